package pipeline

import (
	"context"
	"sync"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// Processor handles one message event end to end.
type Processor interface {
	Process(ctx context.Context, event model.MessageEvent)
}

// Dispatcher runs each message event as its own task. Events never wait on
// each other; each event's chain stays strictly sequential inside its task.
// Shutdown drains in-flight tasks with a bounded wait.
type Dispatcher struct {
	processor Processor
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given processor.
func NewDispatcher(processor Processor) *Dispatcher {
	return &Dispatcher{processor: processor}
}

// Dispatch starts processing an event without blocking the caller. The
// event's context is detached from the webhook request so acknowledging the
// platform does not cancel in-flight work.
func (d *Dispatcher) Dispatch(ctx context.Context, event model.MessageEvent) {
	d.wg.Add(1)
	detached := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		d.processor.Process(detached, event)
	}()
}

// Drain waits for in-flight events to finish or the context to expire.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
