package progress

import (
	"go-certify/internal/common/api"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type ProgressApi struct {
	Controller *ProgressController
}

func NewProgressApi(controller *ProgressController) api.Route {
	return &ProgressApi{Controller: controller}
}

func (h *ProgressApi) Setup(app *fiber.App) {
	app.Get("/api/ws/jobs/:id", websocket.New(h.Controller.HandleWebSocket))
}
