package progress

import (
	"sync"

	"go.uber.org/zap"
)

// Event is one progress update for a batch job.
type Event struct {
	JobID      string  `json:"job_id"`
	Processed  int     `json:"processed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Publisher is the narrow interface the batch engine depends on, so the
// engine can be tested without a live websocket transport.
type Publisher interface {
	Publish(jobID string, event Event)
}

// subscriber receives the JSON-encodable events for one connection.
type subscriber chan Event

// Hub fans progress events out to the subscribers of each job id.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[subscriber]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[subscriber]bool),
		logger: logger,
	}
}

// Subscribe registers a listener for a job and returns its channel plus an
// unsubscribe func. The channel is buffered; a slow consumer loses events
// rather than stalling the engine.
func (h *Hub) Subscribe(jobID string) (<-chan Event, func()) {
	sub := make(subscriber, 16)

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[subscriber]bool)
	}
	h.subs[jobID][sub] = true
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.subs[jobID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, jobID)
			}
		}
		h.mu.Unlock()
		close(sub)
	}

	return sub, unsubscribe
}

// Publish delivers an event to every subscriber of the job.
func (h *Hub) Publish(jobID string, event Event) {
	event.JobID = jobID

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[jobID] {
		select {
		case sub <- event:
		default:
			h.logger.Warn("progress subscriber too slow, dropping event",
				zap.String("job_id", jobID),
			)
		}
	}
}
