package task

import (
	"context"
	"sync"
)

// Outcome is the eventual result of a submitted task. It resolves exactly
// once, either with a Result or with an error.
type Outcome struct {
	taskID uint64
	done   chan struct{}
	once   sync.Once
	result *Result
	err    error
}

func newOutcome(taskID uint64) *Outcome {
	return &Outcome{
		taskID: taskID,
		done:   make(chan struct{}),
	}
}

// TaskID returns the id the pool assigned to the task.
func (o *Outcome) TaskID() uint64 {
	return o.taskID
}

// Done returns a channel that is closed once the outcome has resolved.
func (o *Outcome) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the outcome resolves or ctx is done. Giving up on ctx does
// not cancel the task; it keeps its slot until the execution unit reports.
func (o *Outcome) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-o.done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Outcome) resolve(result *Result) {
	o.once.Do(func() {
		o.result = result
		close(o.done)
	})
}

func (o *Outcome) reject(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}
