package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/services"
)

type UnitHandler struct {
	unitService *services.UnitService
}

func NewUnitHandler(unitService *services.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// @Summary List Units
// @Description Get a paginated list of units
// @Tags Units
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param block query string false "Filter by block"
// @Success 200 {object} map[string]interface{}
// @Router /units [get]
func (h *UnitHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")
	query.Filters["block"] = c.Query("block")

	units, total, err := h.unitService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range units {
		responses = append(responses, units[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"units": responses, "pagination": paginationResponse(query, total)})
}

// @Summary Get Unit
// @Description Get a unit by ID
// @Tags Units
// @Accept json
// @Produce json
// @Param unit_id path int true "Unit ID"
// @Success 200 {object} models.UnitResponse
// @Failure 404 {object} map[string]string
// @Router /units/{unit_id} [get]
func (h *UnitHandler) Show(c *gin.Context) {
	unit, err := h.unitService.FindByID(c.Request.Context(), paramUint(c, "unit_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit": unit.ToResponse()})
}

// @Summary Create Unit
// @Description Add a unit to inventory
// @Tags Units
// @Accept json
// @Produce json
// @Param request body models.Unit true "Unit Data"
// @Success 201 {object} models.UnitResponse
// @Router /units [post]
func (h *UnitHandler) Create(c *gin.Context) {
	var unit models.Unit
	if err := BindNestedOrFlat(c, "unit", &unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.unitService.Create(c.Request.Context(), &unit); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"unit": unit.ToResponse()})
}

// @Summary Update Unit
// @Description Update an existing unit
// @Tags Units
// @Accept json
// @Produce json
// @Param unit_id path int true "Unit ID"
// @Param request body models.Unit true "Unit Data"
// @Success 200 {object} models.UnitResponse
// @Router /units/{unit_id} [put]
func (h *UnitHandler) Update(c *gin.Context) {
	unit, err := h.unitService.FindByID(c.Request.Context(), paramUint(c, "unit_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := BindNestedOrFlat(c, "unit", unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.unitService.Update(c.Request.Context(), unit); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unit": unit.ToResponse()})
}
