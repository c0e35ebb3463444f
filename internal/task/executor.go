package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Executor performs a single operation. Implementations must be safe for
// concurrent use: every execution unit shares the pool's executor.
type Executor interface {
	Execute(ctx context.Context, op Operation, payload Payload) (*Result, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, op Operation, payload Payload) (*Result, error)

// Execute calls f(ctx, op, payload).
func (f ExecutorFunc) Execute(ctx context.Context, op Operation, payload Payload) (*Result, error) {
	return f(ctx, op, payload)
}

// FileExecutor runs file operations against the local filesystem.
// Filesystem failures are returned as *IOError, unknown operations as
// *UnsupportedOperationError.
type FileExecutor struct {
	// now is overridable in tests
	now func() time.Time
}

// NewFileExecutor creates a FileExecutor.
func NewFileExecutor() *FileExecutor {
	return &FileExecutor{now: time.Now}
}

// Execute dispatches op to the matching file operation.
func (e *FileExecutor) Execute(ctx context.Context, op Operation, payload Payload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch op {
	case OperationRead:
		return e.read(ctx, payload.FilePath)
	case OperationWrite:
		return e.write(ctx, payload.FilePath, payload.Content)
	case OperationCopy:
		return e.copy(ctx, payload.Source, payload.Destination)
	case OperationProcess:
		return e.process(ctx, payload.FilePath)
	default:
		return nil, &UnsupportedOperationError{Operation: string(op)}
	}
}

func (e *FileExecutor) read(_ context.Context, path string) (*Result, error) {
	// #nosec G304 -- serving caller-chosen paths is the purpose of this service
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: OperationRead, Path: path, Err: err}
	}

	content := string(data)
	return &Result{
		FilePath:  path,
		Content:   &content,
		Size:      int64(len(data)),
		Timestamp: e.now(),
	}, nil
}

func (e *FileExecutor) write(_ context.Context, path, content string) (*Result, error) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, &IOError{Op: OperationWrite, Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Op: OperationWrite, Path: path, Err: err}
	}

	return &Result{
		FilePath:  path,
		Size:      info.Size(),
		Timestamp: e.now(),
	}, nil
}

func (e *FileExecutor) copy(ctx context.Context, source, destination string) (*Result, error) {
	// #nosec G304
	src, err := os.Open(source)
	if err != nil {
		return nil, &IOError{Op: OperationCopy, Path: source, Err: err}
	}
	defer func() { _ = src.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304
	dst, err := os.Create(destination)
	if err != nil {
		return nil, &IOError{Op: OperationCopy, Path: destination, Err: err}
	}

	n, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		return nil, &IOError{Op: OperationCopy, Path: destination, Err: copyErr}
	}
	if closeErr != nil {
		return nil, &IOError{Op: OperationCopy, Path: destination, Err: closeErr}
	}

	return &Result{
		Source:      source,
		Destination: destination,
		Size:        n,
		Timestamp:   e.now(),
	}, nil
}

func (e *FileExecutor) process(ctx context.Context, path string) (*Result, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: OperationProcess, Path: path, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processed := strings.ToUpper(string(data))
	outputPath := ProcessedPath(path)
	if err := os.WriteFile(outputPath, []byte(processed), 0o644); err != nil {
		return nil, &IOError{Op: OperationProcess, Path: outputPath, Err: err}
	}

	return &Result{
		OriginalFile:  path,
		ProcessedFile: outputPath,
		OriginalSize:  int64(len(data)),
		ProcessedSize: int64(len(processed)),
		Timestamp:     e.now(),
	}, nil
}

// ProcessedPath returns the sibling path a processed file is written to:
// "dir/report.txt" becomes "dir/report_processed.txt".
func ProcessedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_processed%s", base, ext)
}
