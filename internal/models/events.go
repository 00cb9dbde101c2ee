package models

type TaskEventType string

const (
	TaskCreated TaskEventType = "task.created"
	TaskUpdated TaskEventType = "task.updated"
	TaskDeleted TaskEventType = "task.deleted"
)

// TaskEvent is pushed to live subscribers after a task change is committed.
type TaskEvent struct {
	Type TaskEventType `json:"type"`
	Task Task          `json:"task"`
}
