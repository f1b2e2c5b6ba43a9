package progress

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type ProgressController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewProgressController(hub *Hub, logger *zap.Logger) *ProgressController {
	return &ProgressController{Hub: hub, Logger: logger}
}

// HandleWebSocket streams a job's progress events to the connected client
// until the client disconnects or the subscription channel closes.
func (h *ProgressController) HandleWebSocket(c *websocket.Conn) {
	jobID := c.Params("id")

	events, unsubscribe := h.Hub.Subscribe(jobID)
	defer unsubscribe()

	// Drain client frames so closes are noticed promptly
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				h.Logger.Debug("progress write failed",
					zap.String("job_id", jobID),
					zap.Error(err),
				)
				return
			}
		}
	}
}
