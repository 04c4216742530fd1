package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationsHandler exposes a user's in-app notifications.
type NotificationsHandler struct {
	notifications repository.NotificationRepository
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// ListNotifications GET /notifications.
func (h *NotificationsHandler) ListNotifications(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	rows, err := h.notifications.ListForUser(c.UserContext(), user.ID, user.DepartmentID, limit)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.NotificationSummary, 0, len(rows))
	for i := range rows {
		items = append(items, dto.FromNotification(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkNotificationRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.notifications.MarkRead(c.UserContext(), c.Params("id"), user.ID); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}
