package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/filepool/internal/events"
	"github.com/phrazzld/filepool/internal/task"
	"golang.org/x/sync/errgroup"
)

// TaskPool defines the pool operations the service depends on.
// *task.WorkerPool satisfies it.
type TaskPool interface {
	// Submit queues an operation and returns its eventual outcome
	Submit(op task.Operation, payload task.Payload) *task.Outcome

	// Stats returns a snapshot of slot and queue usage
	Stats() task.Stats

	// Shutdown stops the pool's execution units
	Shutdown(ctx context.Context) error
}

// EventSubscriber registers handlers for pool lifecycle events.
// *events.InMemoryEventEmitter satisfies it.
type EventSubscriber interface {
	RegisterHandler(handler events.EventHandler, kinds ...events.EventKind)
}

// BatchItem is the outcome of one file in a batch.
type BatchItem struct {
	File   string
	Result *task.Result
	Err    error
}

// FileService provides file operations executed on the task pool
type FileService interface {
	// ReadFile returns the content of the file at path
	ReadFile(ctx context.Context, path string) (*task.Result, error)

	// WriteFile creates or overwrites the file at path
	WriteFile(ctx context.Context, path, content string) (*task.Result, error)

	// CopyFile copies source to destination
	CopyFile(ctx context.Context, source, destination string) (*task.Result, error)

	// ProcessFile writes an uppercased sibling of the file at path
	ProcessFile(ctx context.Context, path string) (*task.Result, error)

	// ProcessBatch runs op on every file concurrently and collects every
	// outcome; one failing file never prevents the others from completing
	ProcessBatch(ctx context.Context, files []string, op task.Operation) ([]BatchItem, error)

	// Stats returns the pool statistics
	Stats() task.Stats

	// Subscribe registers an observer for pool lifecycle events
	Subscribe(handler events.EventHandler, kinds ...events.EventKind)

	// Shutdown stops the underlying pool
	Shutdown(ctx context.Context) error
}

// fileServiceImpl implements the FileService interface
type fileServiceImpl struct {
	pool       TaskPool
	subscriber EventSubscriber
	logger     *slog.Logger
}

// NewFileService creates a new FileService and subscribes the event logging
// sink to the pool's lifecycle events.
// It returns an error if any of the required dependencies are nil.
func NewFileService(pool TaskPool, subscriber EventSubscriber, logger *slog.Logger) (FileService, error) {
	if pool == nil {
		return nil, &FileServiceError{
			Operation: "create_service",
			Message:   "pool cannot be nil",
		}
	}
	if subscriber == nil {
		return nil, &FileServiceError{
			Operation: "create_service",
			Message:   "subscriber cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &fileServiceImpl{
		pool:       pool,
		subscriber: subscriber,
		logger:     logger.With("component", "file_service"),
	}
	subscriber.RegisterHandler(NewEventLogger(logger))

	return s, nil
}

// ReadFile submits a read operation and waits for its outcome.
func (s *fileServiceImpl) ReadFile(ctx context.Context, path string) (*task.Result, error) {
	return s.execute(ctx, "read_file", task.OperationRead, task.Payload{FilePath: path})
}

// WriteFile submits a write operation and waits for its outcome.
func (s *fileServiceImpl) WriteFile(ctx context.Context, path, content string) (*task.Result, error) {
	return s.execute(ctx, "write_file", task.OperationWrite, task.Payload{FilePath: path, Content: content})
}

// CopyFile submits a copy operation and waits for its outcome.
func (s *fileServiceImpl) CopyFile(ctx context.Context, source, destination string) (*task.Result, error) {
	return s.execute(ctx, "copy_file", task.OperationCopy,
		task.Payload{Source: source, Destination: destination})
}

// ProcessFile submits a process operation and waits for its outcome.
func (s *fileServiceImpl) ProcessFile(ctx context.Context, path string) (*task.Result, error) {
	return s.execute(ctx, "process_file", task.OperationProcess, task.Payload{FilePath: path})
}

// ProcessBatch fans out one submission per file. Only read and process are
// accepted. The returned slice is in the order of files and every item holds
// either a result or an error.
func (s *fileServiceImpl) ProcessBatch(
	ctx context.Context,
	files []string,
	op task.Operation,
) ([]BatchItem, error) {
	if op != task.OperationRead && op != task.OperationProcess {
		return nil, NewFileServiceError("process_batch", "operation not allowed in batch",
			&task.UnsupportedOperationError{Operation: string(op)})
	}
	if len(files) == 0 {
		return nil, NewFileServiceError("process_batch", "no files given", ErrEmptyBatch)
	}

	items := make([]BatchItem, len(files))
	g, gctx := errgroup.WithContext(ctx)
	// At most one submission per slot is outstanding, so a large batch
	// never floods the pool queue ahead of other callers.
	g.SetLimit(max(s.pool.Stats().MaxSlots, 1))
	for i, file := range files {
		if err := gctx.Err(); err != nil {
			items[i] = BatchItem{File: file, Err: NewFileServiceError("process_batch", "batch cancelled", err)}
			continue
		}
		i, file := i, file
		g.Go(func() error {
			result, err := s.execute(gctx, "process_batch", op, task.Payload{FilePath: file})
			items[i] = BatchItem{File: file, Result: result, Err: err}
			return nil
		})
	}
	// Item errors are kept per item, so the group itself never fails.
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	s.logger.Info("batch finished",
		"operation", op,
		"files", len(files),
		"failed", failed)

	return items, nil
}

// Stats returns the pool statistics.
func (s *fileServiceImpl) Stats() task.Stats {
	return s.pool.Stats()
}

// Subscribe registers an observer for pool lifecycle events.
func (s *fileServiceImpl) Subscribe(handler events.EventHandler, kinds ...events.EventKind) {
	s.subscriber.RegisterHandler(handler, kinds...)
}

// Shutdown stops the underlying pool.
func (s *fileServiceImpl) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down file service")
	if err := s.pool.Shutdown(ctx); err != nil {
		return NewFileServiceError("shutdown", "failed to stop task pool", err)
	}
	return nil
}

// execute validates the payload, submits it and waits for the outcome.
func (s *fileServiceImpl) execute(
	ctx context.Context,
	name string,
	op task.Operation,
	payload task.Payload,
) (*task.Result, error) {
	if err := payload.Validate(op); err != nil {
		return nil, NewFileServiceError(name, "invalid payload", err)
	}

	outcome := s.pool.Submit(op, payload)
	result, err := outcome.Wait(ctx)
	if err != nil {
		s.logger.Debug("operation failed",
			"operation", op,
			"task_id", outcome.TaskID(),
			"error", err)
		return nil, NewFileServiceError(name, "operation failed", err)
	}

	return result, nil
}
