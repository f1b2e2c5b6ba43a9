package smtp

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SmtpConfigApi struct {
	controller *SmtpConfigController
}

func NewSmtpConfigApi(controller *SmtpConfigController) api.Route {
	return &SmtpConfigApi{controller: controller}
}

func (h *SmtpConfigApi) Setup(app *fiber.App) {
	configs := app.Group("/api/smtp-configs")

	configs.Post("/", h.controller.Create)
	configs.Get("/", h.controller.List)
	configs.Get("/:id", h.controller.Get)
	configs.Put("/:id", h.controller.Update)
	configs.Delete("/:id", h.controller.Delete)
	configs.Post("/:id/default", h.controller.SetDefault)
	configs.Post("/:id/verify", h.controller.Verify)
}
