package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// unit is an execution unit: a goroutine that takes one message at a time
// from its inbox, runs it through the executor and sends exactly one report
// back before reading the next message. It shares nothing with the pool but
// the two channels.
type unit struct {
	slotID   int
	inbox    chan message
	reports  chan<- report
	quit     <-chan struct{}
	ctx      context.Context
	executor Executor
	timeout  time.Duration
	logger   *slog.Logger
}

func (u *unit) run(wg *sync.WaitGroup) {
	defer wg.Done()

	u.logger.Debug("starting execution unit")

	for {
		select {
		case <-u.quit:
			u.logger.Debug("stopping execution unit")
			return

		case msg, ok := <-u.inbox:
			if !ok {
				u.logger.Debug("inbox closed, stopping execution unit")
				return
			}

			rep := u.execute(msg)

			select {
			case u.reports <- rep:
			case <-u.quit:
				return
			}

			if rep.Crash != nil {
				return
			}
		}
	}
}

// execute runs one message. A panic in the executor, or an executor that
// returns neither a result nor an error, is reported as a crash.
func (u *unit) execute(msg message) (rep report) {
	rep = report{SlotID: u.slotID, TaskID: msg.TaskID}

	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("execution unit panicked",
				"task_id", msg.TaskID,
				"operation", msg.Operation,
				"panic", r,
				"stack", string(debug.Stack()))
			rep.Result = nil
			rep.Err = nil
			rep.Crash = &UnitCrashError{SlotID: u.slotID, Reason: fmt.Sprint(r)}
		}
	}()

	ctx := u.ctx
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	rep.Result, rep.Err = u.executor.Execute(ctx, msg.Operation, msg.Payload)
	if rep.Err != nil && u.timeout > 0 &&
		errors.Is(ctx.Err(), context.DeadlineExceeded) && u.ctx.Err() == nil {
		rep.Err = fmt.Errorf("%w after %s: %w", ErrTaskTimeout, u.timeout, rep.Err)
	}
	if rep.Result == nil && rep.Err == nil {
		rep.Crash = &UnitCrashError{SlotID: u.slotID, Reason: "executor returned neither result nor error"}
	}
	return rep
}
