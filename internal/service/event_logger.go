package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/filepool/internal/events"
)

// EventLogger is the logging sink for pool lifecycle events.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger creates an EventLogger writing to logger.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	return &EventLogger{logger: logger.With("component", "task_events")}
}

// HandleEvent logs started and completed tasks at info level and failed
// tasks at error level.
func (l *EventLogger) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	switch event.Kind {
	case events.TaskStarted:
		l.logger.InfoContext(ctx, "task started",
			"task_id", event.TaskID,
			"operation", event.Operation)
	case events.TaskCompleted:
		l.logger.InfoContext(ctx, "task completed",
			"task_id", event.TaskID,
			"operation", event.Operation,
			"execution_time_ms", event.ExecutionTime.Milliseconds())
	case events.TaskFailed:
		l.logger.ErrorContext(ctx, "task failed",
			"task_id", event.TaskID,
			"operation", event.Operation,
			"error", event.Error)
	}
	return nil
}
