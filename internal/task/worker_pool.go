package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/phrazzld/filepool/internal/events"
)

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// MaxSlots bounds the number of execution units.
	// If zero or negative, defaults to the number of CPUs
	MaxSlots int

	// TaskTimeout is the per-task deadline handed to the executor.
	// Zero disables it
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		MaxSlots: runtime.NumCPU(),
	}
}

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	TotalSlots  int `json:"totalWorkers"`
	BusySlots   int `json:"busyWorkers"`
	QueuedTasks int `json:"queuedTasks"`
	ActiveTasks int `json:"activeTasks"`
	MaxSlots    int `json:"maxWorkers"`
}

// slot is the pool's bookkeeping record for one execution unit.
type slot struct {
	id      int
	unit    *unit
	busy    bool
	current uint64
}

// WorkerPool multiplexes submitted tasks over at most MaxSlots execution
// units, creating units only when a queued task needs one.
//
// All bookkeeping (queue, slots, active tasks) is guarded by mu. Execution
// units never touch it; they receive messages on their inbox and report on a
// shared channel drained by the collector goroutine.
type WorkerPool struct {
	mu         sync.Mutex
	slots      []*slot
	active     map[*slot]*Task
	queue      *TaskQueue
	nextTaskID uint64
	nextSlotID int
	closed     bool

	maxSlots    int
	taskTimeout time.Duration
	executor    Executor

	reports chan report
	quit    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	// stopped is closed once every unit and the collector have exited
	stopped chan struct{}

	// wg tracks execution units and the collector for clean shutdown
	wg sync.WaitGroup

	notifier *notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorkerPool creates a worker pool. No execution units are started until
// the first task is submitted. A nil executor means a FileExecutor; a nil
// emitter disables lifecycle events.
func NewWorkerPool(
	config WorkerPoolConfig,
	executor Executor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *WorkerPool {
	logger = logger.With("component", "worker_pool")

	maxSlots := config.MaxSlots
	if maxSlots <= 0 {
		maxSlots = runtime.NumCPU()
		logger.Warn("invalid max slots specified, using CPU count",
			"specified_count", config.MaxSlots,
			"default_count", maxSlots)
	}

	if executor == nil {
		executor = NewFileExecutor()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &WorkerPool{
		slots:       make([]*slot, 0, maxSlots),
		active:      make(map[*slot]*Task),
		queue:       NewTaskQueue(),
		maxSlots:    maxSlots,
		taskTimeout: config.TaskTimeout,
		executor:    executor,
		reports:     make(chan report, maxSlots),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		notifier:    newNotifier(emitter, logger),
		logger:      logger,
		now:         time.Now,
	}

	p.wg.Add(1)
	go p.collect()

	return p
}

// Submit queues an operation and returns its outcome. It never blocks on
// execution: the outcome resolves when the execution unit reports back.
// After Shutdown the returned outcome is already failed with ErrPoolClosed.
func (p *WorkerPool) Submit(op Operation, payload Payload) *Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextTaskID++
	t := &Task{
		ID:          p.nextTaskID,
		Operation:   op,
		Payload:     payload,
		SubmittedAt: p.now(),
		Status:      TaskStatusQueued,
		outcome:     newOutcome(p.nextTaskID),
	}

	if p.closed {
		t.outcome.reject(ErrPoolClosed)
		return t.outcome
	}

	p.queue.Enqueue(t)
	p.logger.Debug("task enqueued",
		"task_id", t.ID,
		"operation", t.Operation,
		"queue_len", p.queue.Len())

	p.dispatchLocked()
	return t.outcome
}

// Stats returns a snapshot of slot and queue usage.
func (p *WorkerPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	busy := 0
	for _, s := range p.slots {
		if s.busy {
			busy++
		}
	}

	return Stats{
		TotalSlots:  len(p.slots),
		BusySlots:   busy,
		QueuedTasks: p.queue.Len(),
		ActiveTasks: len(p.active),
		MaxSlots:    p.maxSlots,
	}
}

// MaxSlots returns the configured slot bound.
func (p *WorkerPool) MaxSlots() int {
	return p.maxSlots
}

// Shutdown stops every execution unit and empties the pool. Tasks still
// queued or running are failed with ErrPoolClosed. It waits for the units to
// exit until ctx is done. Later calls only wait, under their own ctx, for the
// units stopped by the first one.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return p.awaitStopped(ctx)
	}
	p.closed = true

	slots := p.slots
	abandoned := p.queue.Drain()
	for s, t := range p.active {
		abandoned = append(abandoned, t)
		delete(p.active, s)
	}
	p.slots = make([]*slot, 0)
	p.mu.Unlock()

	p.logger.Info("shutting down worker pool",
		"slots", len(slots),
		"abandoned_tasks", len(abandoned))

	p.cancel()
	close(p.quit)
	for _, s := range slots {
		close(s.unit.inbox)
	}

	for _, t := range abandoned {
		t.outcome.reject(ErrPoolClosed)
	}

	go func() {
		p.wg.Wait()
		close(p.stopped)
	}()

	err := p.awaitStopped(ctx)
	if err == nil {
		p.logger.Info("worker pool stopped")
	} else {
		p.logger.Error("worker pool shutdown timed out", "error", err)
	}

	p.notifier.stop()
	return err
}

func (p *WorkerPool) awaitStopped(ctx context.Context) error {
	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for execution units: %w", ctx.Err())
	}
}

// dispatchLocked assigns queued tasks while there is capacity: an idle slot
// first, otherwise a new slot if the bound allows. Callers hold mu.
func (p *WorkerPool) dispatchLocked() {
	if p.closed {
		return
	}

	for p.queue.Len() > 0 {
		s := p.idleSlotLocked()
		if s == nil {
			if len(p.slots) >= p.maxSlots {
				return
			}
			s = p.spawnLocked()
		}
		p.assignLocked(s, p.queue.Dequeue())
	}
}

func (p *WorkerPool) idleSlotLocked() *slot {
	for _, s := range p.slots {
		if !s.busy {
			return s
		}
	}
	return nil
}

func (p *WorkerPool) spawnLocked() *slot {
	p.nextSlotID++
	s := &slot{id: p.nextSlotID}
	s.unit = &unit{
		slotID:   s.id,
		inbox:    make(chan message, 1),
		reports:  p.reports,
		quit:     p.quit,
		ctx:      p.ctx,
		executor: p.executor,
		timeout:  p.taskTimeout,
		logger:   p.logger.With("slot_id", s.id),
	}
	p.slots = append(p.slots, s)

	p.wg.Add(1)
	go s.unit.run(&p.wg)

	p.logger.Debug("execution unit created",
		"slot_id", s.id,
		"total_slots", len(p.slots))
	return s
}

// assignLocked hands t to the slot's unit. The inbox has room for one message
// and an idle unit has none pending, so the send does not block.
func (p *WorkerPool) assignLocked(s *slot, t *Task) {
	s.busy = true
	s.current = t.ID
	p.active[s] = t

	s.unit.inbox <- message{TaskID: t.ID, Operation: t.Operation, Payload: t.Payload}
	t.Status = TaskStatusRunning

	p.logger.Debug("task assigned",
		"task_id", t.ID,
		"operation", t.Operation,
		"slot_id", s.id)
	p.notifier.push(events.NewTaskEvent(events.TaskStarted, t.ID, string(t.Operation)))
}

// collect receives unit reports until shutdown.
func (p *WorkerPool) collect() {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case rep := <-p.reports:
			p.handleReport(rep)
		}
	}
}

func (p *WorkerPool) handleReport(rep report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.slotLocked(rep.SlotID)
	if s == nil {
		p.logger.Debug("ignoring report from unknown slot",
			"slot_id", rep.SlotID,
			"task_id", rep.TaskID)
		return
	}

	if rep.Crash != nil {
		p.unitFailedLocked(s, rep.Crash)
		p.dispatchLocked()
		return
	}

	t, ok := p.active[s]
	if !ok || t.ID != rep.TaskID {
		p.logger.Warn("ignoring report without matching active task",
			"slot_id", rep.SlotID,
			"task_id", rep.TaskID)
		return
	}

	s.busy = false
	s.current = 0
	delete(p.active, s)

	t.CompletedAt = p.now()
	if rep.Err != nil {
		t.Status = TaskStatusFailed
		t.outcome.reject(rep.Err)

		event := events.NewTaskEvent(events.TaskFailed, t.ID, string(t.Operation))
		event.Error = rep.Err.Error()
		p.notifier.push(event)
	} else {
		t.Status = TaskStatusCompleted
		result := rep.Result
		result.ExecutionTime = t.CompletedAt.Sub(t.SubmittedAt)
		t.outcome.resolve(result)

		event := events.NewTaskEvent(events.TaskCompleted, t.ID, string(t.Operation))
		event.ExecutionTime = result.ExecutionTime
		p.notifier.push(event)
	}

	p.dispatchLocked()
}

// unitFailedLocked fails the slot's active task, if any, and drops the slot.
// Capacity comes back lazily: the next dispatch that needs a unit creates one.
func (p *WorkerPool) unitFailedLocked(s *slot, crash *UnitCrashError) {
	p.logger.Warn("execution unit failed, removing slot",
		"slot_id", s.id,
		"error", crash)

	if t, ok := p.active[s]; ok {
		delete(p.active, s)
		t.Status = TaskStatusFailed
		t.CompletedAt = p.now()
		t.outcome.reject(crash)

		event := events.NewTaskEvent(events.TaskFailed, t.ID, string(t.Operation))
		event.Error = crash.Error()
		p.notifier.push(event)
	}

	for i, candidate := range p.slots {
		if candidate == s {
			p.slots = append(p.slots[:i], p.slots[i+1:]...)
			break
		}
	}
}

func (p *WorkerPool) slotLocked(id int) *slot {
	for _, s := range p.slots {
		if s.id == id {
			return s
		}
	}
	return nil
}
