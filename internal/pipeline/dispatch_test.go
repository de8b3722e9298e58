package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

type countingProcessor struct {
	mu     sync.Mutex
	events []model.MessageEvent
	block  chan struct{}
}

func (p *countingProcessor) Process(ctx context.Context, event model.MessageEvent) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestDispatcher_DrainWaitsForInFlightEvents(t *testing.T) {
	t.Parallel()

	proc := &countingProcessor{block: make(chan struct{})}
	d := NewDispatcher(proc)

	d.Dispatch(context.Background(), model.MessageEvent{PageID: "p1", SenderID: "s1", Text: "a"})
	d.Dispatch(context.Background(), model.MessageEvent{PageID: "p1", SenderID: "s2", Text: "b"})

	close(proc.block)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("expected 2 processed events, got %d", proc.count())
	}
}

func TestDispatcher_DrainTimesOutOnStuckEvent(t *testing.T) {
	t.Parallel()

	proc := &countingProcessor{block: make(chan struct{})}
	d := NewDispatcher(proc)

	d.Dispatch(context.Background(), model.MessageEvent{PageID: "p1", SenderID: "s1", Text: "a"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Drain(ctx); err == nil {
		t.Fatal("expected drain to time out")
	}
	close(proc.block)
}

func TestDispatcher_SurvivesCanceledRequestContext(t *testing.T) {
	t.Parallel()

	proc := &countingProcessor{}
	d := NewDispatcher(proc)

	reqCtx, cancel := context.WithCancel(context.Background())
	d.Dispatch(reqCtx, model.MessageEvent{PageID: "p1", SenderID: "s1", Text: "a"})
	cancel()

	ctx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 processed event, got %d", proc.count())
	}
}
