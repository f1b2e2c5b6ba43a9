package email_template

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type EmailTemplateApi struct {
	controller *EmailTemplateController
}

func NewEmailTemplateApi(controller *EmailTemplateController) api.Route {
	return &EmailTemplateApi{controller: controller}
}

func (h *EmailTemplateApi) Setup(app *fiber.App) {
	templates := app.Group("/api/email-templates")

	templates.Post("/", h.controller.Create)
	templates.Get("/", h.controller.List)
	templates.Get("/:id", h.controller.Get)
	templates.Put("/:id", h.controller.Update)
	templates.Delete("/:id", h.controller.Delete)
	templates.Post("/:id/test", h.controller.SendTestEmail)
}
