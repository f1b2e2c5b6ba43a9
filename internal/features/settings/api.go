package settings

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SettingsApi struct {
	controller *SettingsController
}

func NewSettingsApi(controller *SettingsController) api.Route {
	return &SettingsApi{controller: controller}
}

func (h *SettingsApi) Setup(app *fiber.App) {
	group := app.Group("/api/settings")

	group.Get("/", h.controller.Get)
	group.Put("/", h.controller.Update)
}
