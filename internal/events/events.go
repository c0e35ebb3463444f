package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a task lifecycle transition.
type EventKind string

// Lifecycle event kinds emitted by the task pool.
const (
	TaskStarted   EventKind = "task-started"
	TaskCompleted EventKind = "task-completed"
	TaskFailed    EventKind = "task-failed"
)

// TaskEvent describes a single task transition.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Kind is the transition that produced the event
	Kind EventKind `json:"event"`

	// TaskID is the pool-assigned id of the task
	TaskID uint64 `json:"task_id"`

	// Operation is the operation name the task was submitted with
	Operation string `json:"operation"`

	// ExecutionTime is set on task-completed events
	ExecutionTime time.Duration `json:"execution_time,omitempty"`

	// Error is set on task-failed events
	Error string `json:"error,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskEvent creates a TaskEvent of the given kind for a task.
func NewTaskEvent(kind EventKind, taskID uint64, operation string) *TaskEvent {
	return &TaskEvent{
		ID:        uuid.New(),
		Kind:      kind,
		TaskID:    taskID,
		Operation: operation,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventHandlerFunc adapts a plain function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the pool to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all interested handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
