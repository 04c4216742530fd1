package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SettingsHandler exposes the singleton workflow configuration.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: settingsService}
}

// GetSettings GET /settings.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	cfg, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromGeneralConfig(cfg)})
}

// UpdateSettings PUT /settings.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.GeneralConfigPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cfg, err := h.service.Update(c.UserContext(), req.ToGeneralConfig())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromGeneralConfig(cfg)})
}
