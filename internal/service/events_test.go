package service

import (
	"sync"

	"task-manager-api/internal/models"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []models.TaskEvent
}

func (r *recordedEvents) Publish(e models.TaskEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []models.TaskEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TaskEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
