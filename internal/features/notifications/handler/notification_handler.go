package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/core/httperr"
	"digo-dashboard/internal/core/logger"
	"digo-dashboard/internal/features/notifications/domain"
	"digo-dashboard/internal/features/notifications/ports"
)

// NotificationHandler handles HTTP requests for the user inbox.
type NotificationHandler struct {
	service ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// CreateNotificationRequest represents the request body for creating a
// notification. Omitting toUserId broadcasts to every user.
type CreateNotificationRequest struct {
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      domain.Type     `json:"type"`
	ToUserID  *int            `json:"toUserId"`
	CompanyID *int            `json:"companyId"`
	AreaID    *int            `json:"areaId"`
	Priority  domain.Priority `json:"priority"`
}

// List handles GET /api/notifications.
// @Summary List notifications
// @Description Returns the caller's notifications plus broadcasts, newest first.
// @Tags Notifications
// @Produce json
// @Success 200 {array} domain.Notification
// @Failure 401 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}

	notifications, err := h.service.ListForUser(c.Context(), claims.UserID)
	if err != nil {
		logger.Get().Error("Failed to list notifications", zap.Int("user_id", claims.UserID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(notifications)
}

// Create handles POST /api/notifications.
// @Summary Create a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification body CreateNotificationRequest true "Notification"
// @Success 201 {object} domain.Notification
// @Failure 400 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/notifications [post]
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}

	var req CreateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" {
		return httperr.Respond(c, http.StatusBadRequest, "title is required")
	}

	from := claims.UserID
	n, err := h.service.Create(c.Context(), ports.CreateInput{
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		FromUserID: &from,
		ToUserID:   req.ToUserID,
		CompanyID:  req.CompanyID,
		AreaID:     req.AreaID,
		Priority:   req.Priority,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidType) || errors.Is(err, domain.ErrInvalidPriority) {
			return httperr.Respond(c, http.StatusBadRequest, err.Error())
		}
		logger.Get().Error("Failed to create notification", zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusCreated).JSON(n)
}

// MarkRead handles PATCH /api/notifications/:id/read.
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid notification id")
	}

	if err := h.service.MarkRead(c.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Notification not found")
		}
		logger.Get().Error("Failed to mark notification read", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead handles PATCH /api/notifications/read-all.
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}

	if err := h.service.MarkAllRead(c.Context(), claims.UserID); err != nil {
		logger.Get().Error("Failed to mark all notifications read", zap.Int("user_id", claims.UserID), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "All notifications marked as read"})
}

// Delete handles DELETE /api/notifications/:id.
// @Summary Delete a notification
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} httperr.ErrorResponse
// @Failure 500 {object} httperr.ErrorResponse
// @Router /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	claims := auth.UserFromCtx(c)
	if claims == nil {
		return httperr.Respond(c, http.StatusUnauthorized, "Authentication required")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return httperr.Respond(c, http.StatusBadRequest, "Invalid notification id")
	}

	if err := h.service.Delete(c.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.Respond(c, http.StatusNotFound, "Notification not found")
		}
		logger.Get().Error("Failed to delete notification", zap.Int("id", id), zap.Error(err))
		return httperr.Respond(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Notification deleted"})
}
