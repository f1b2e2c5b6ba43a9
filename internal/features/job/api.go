package job

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type JobApi struct {
	controller *JobController
}

func NewJobApi(controller *JobController) api.Route {
	return &JobApi{controller: controller}
}

func (h *JobApi) Setup(app *fiber.App) {
	jobs := app.Group("/api/jobs")

	jobs.Post("/certificates", h.controller.CreateCertificateJob)
	jobs.Post("/emails", h.controller.CreateEmailJob)
	jobs.Get("/", h.controller.List)
	jobs.Get("/:id", h.controller.Get)
	jobs.Get("/:id/recipients", h.controller.Recipients)
	jobs.Post("/:id/retry", h.controller.Retry)
	jobs.Post("/:id/cancel", h.controller.Cancel)
	jobs.Delete("/:id", h.controller.Delete)
}
