package importer

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ImporterApi struct {
	controller *ImporterController
}

func NewImporterApi(controller *ImporterController) api.Route {
	return &ImporterApi{controller: controller}
}

func (h *ImporterApi) Setup(app *fiber.App) {
	group := app.Group("/api/import")

	group.Post("/preview", h.controller.Preview)
}
