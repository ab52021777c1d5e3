package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/solterra/ventas-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Unit         *UnitHandler
	Client       *ClientHandler
	Case         *CaseHandler
	Payment      *PaymentHandler
	Notification *NotificationHandler
	Report       *ReportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(worker),
		Unit:         NewUnitHandler(svcs.Unit),
		Client:       NewClientHandler(svcs.Client),
		Case:         NewCaseHandler(svcs.Case),
		Payment:      NewPaymentHandler(svcs.Payment),
		Notification: NewNotificationHandler(svcs.Notification),
		Report:       NewReportHandler(svcs.Report),
	}
}

// respondError maps service sentinel errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrConcurrencyConflict),
		errors.Is(err, services.ErrUnitUnavailable),
		errors.Is(err, services.ErrClientInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseListQuery reads the shared pagination/search/sort query parameters
func parseListQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	// Sort parameter format: field-direction
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	return query
}

func paginationResponse(query *repository.ListQuery, total int64) gin.H {
	totalPages := int64(0)
	if query.PerPage > 0 {
		totalPages = (total + int64(query.PerPage) - 1) / int64(query.PerPage)
	}
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": totalPages,
	}
}

func paramUint(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id)
}
