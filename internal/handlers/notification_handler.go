package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications, newest first
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param unread query string false "Only unread when true"
// @Param type query string false "Filter by notification type"
// @Param case_id query string false "Filter by case"
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["unread"] = c.Query("unread")
	query.Filters["type"] = c.Query("type")
	query.Filters["case_id"] = c.Query("case_id")

	notifications, total, err := h.notificationService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	unreadCount, err := h.notificationService.CountUnread(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": responses,
		"unread_count":  unreadCount,
		"pagination":    paginationResponse(query, total),
	})
}

// @Summary Mark Notification Read
// @Description Mark a single notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{notification_id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkAsRead(c.Request.Context(), paramUint(c, "notification_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notificación leída"})
}

// @Summary Mark All Notifications Read
// @Description Mark every unread notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notificaciones leídas"})
}
