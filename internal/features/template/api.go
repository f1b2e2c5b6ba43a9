package template

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	controller *TemplateController
}

func NewTemplateApi(controller *TemplateController) api.Route {
	return &TemplateApi{controller: controller}
}

func (h *TemplateApi) Setup(app *fiber.App) {
	templates := app.Group("/api/templates")

	templates.Post("/", h.controller.Upload)
	templates.Get("/", h.controller.List)
	templates.Get("/:id", h.controller.Get)
	templates.Put("/:id", h.controller.Update)
	templates.Delete("/:id", h.controller.Delete)
	templates.Get("/:id/file", h.controller.File)
	templates.Post("/:id/preview", h.controller.Preview)
}
