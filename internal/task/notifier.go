package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/filepool/internal/events"
)

// notifier delivers lifecycle events on its own goroutine. The pool pushes
// events while holding its lock, which fixes their order; handlers run
// without the lock, so they may call back into the pool.
type notifier struct {
	emitter events.EventEmitter
	logger  *slog.Logger

	mu      sync.Mutex
	pending []*events.TaskEvent

	wake     chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newNotifier(emitter events.EventEmitter, logger *slog.Logger) *notifier {
	n := &notifier{
		emitter: emitter,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *notifier) push(event *events.TaskEvent) {
	if n.emitter == nil {
		return
	}

	n.mu.Lock()
	n.pending = append(n.pending, event)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	defer close(n.done)

	for {
		select {
		case <-n.wake:
			n.flush()
		case <-n.stopCh:
			n.flush()
			return
		}
	}
}

func (n *notifier) flush() {
	for {
		n.mu.Lock()
		batch := n.pending
		n.pending = nil
		n.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for _, event := range batch {
			if err := n.emitter.EmitEvent(context.Background(), event); err != nil {
				n.logger.Debug("event handler returned error",
					"event_kind", event.Kind,
					"task_id", event.TaskID,
					"error", err)
			}
		}
	}
}

// stop delivers whatever is still pending and waits for the goroutine to exit.
func (n *notifier) stop() {
	n.stopOnce.Do(func() { close(n.stopCh) })
	<-n.done
}
