package task

import (
	"time"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Operation names a file operation an execution unit knows how to perform.
type Operation string

// Supported operations
const (
	OperationRead    Operation = "read"
	OperationWrite   Operation = "write"
	OperationCopy    Operation = "copy"
	OperationProcess Operation = "process"
)

// Supported reports whether op is one of the operations execution units run.
func (op Operation) Supported() bool {
	switch op {
	case OperationRead, OperationWrite, OperationCopy, OperationProcess:
		return true
	}
	return false
}

// Payload carries the operation-specific fields of a task. Only the fields
// relevant to the operation are read: FilePath for read and process,
// FilePath and Content for write, Source and Destination for copy.
type Payload struct {
	FilePath    string `json:"filePath,omitempty"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// Validate checks that the fields required by op are present.
func (p Payload) Validate(op Operation) error {
	switch op {
	case OperationRead, OperationWrite, OperationProcess:
		if p.FilePath == "" {
			return NewValidationError("filePath", "is required")
		}
	case OperationCopy:
		if p.Source == "" {
			return NewValidationError("source", "is required")
		}
		if p.Destination == "" {
			return NewValidationError("destination", "is required")
		}
	default:
		return &UnsupportedOperationError{Operation: string(op)}
	}
	return nil
}

// Result is the outcome of a successful operation. Which fields are set
// depends on the operation; ExecutionTime is filled in by the pool.
type Result struct {
	FilePath      string        `json:"filePath,omitempty"`
	Content       *string       `json:"content,omitempty"`
	Size          int64         `json:"size"`
	Source        string        `json:"source,omitempty"`
	Destination   string        `json:"destination,omitempty"`
	OriginalFile  string        `json:"originalFile,omitempty"`
	ProcessedFile string        `json:"processedFile,omitempty"`
	OriginalSize  int64         `json:"originalSize,omitempty"`
	ProcessedSize int64         `json:"processedSize,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	ExecutionTime time.Duration `json:"executionTime"`
}

// Task is a unit of work owned by the pool from submission until its outcome
// is delivered.
type Task struct {
	ID          uint64
	Operation   Operation
	Payload     Payload
	SubmittedAt time.Time
	Status      TaskStatus
	CompletedAt time.Time

	outcome *Outcome
}

// message is what the pool sends to an execution unit.
type message struct {
	TaskID    uint64
	Operation Operation
	Payload   Payload
}

// report is what an execution unit sends back to the pool. A non-nil crash
// means the unit is unusable and has stopped.
type report struct {
	SlotID int
	TaskID uint64
	Result *Result
	Err    error
	Crash  *UnitCrashError
}
