package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Outcome is the completion of one hand-off. For the NATS publisher it only
// covers the publish; the report stays with the worker that dispatched.
type Outcome struct {
	Report *Report
	Err    error
}

// Publisher hands events to dispatch without waiting for delivery. The
// returned channel receives exactly one Outcome and is then closed; callers
// may ignore it.
type Publisher interface {
	Enqueue(ctx context.Context, ev Event) <-chan Outcome
}

// rejected logs an event refused before hand-off. Callers usually drop the
// channel, so this log line is the only trace.
func rejected(ctx context.Context, ev Event, err error) <-chan Outcome {
	slog.ErrorContext(ctx, "dispatch: event not handed off", "kind", ev.Kind, "subject_id", ev.SubjectID, "err", err)
	return completed(Outcome{Err: err})
}

func completed(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}

// ---------------------------------------------------------------------------
// In-process
// ---------------------------------------------------------------------------

// LocalPublisher runs dispatch in a goroutine detached from the caller's
// cancellation. Close waits for in-flight dispatches.
type LocalPublisher struct {
	svc     Service
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewLocalPublisher bounds each dispatch by timeout; zero means no bound.
func NewLocalPublisher(svc Service, timeout time.Duration) *LocalPublisher {
	return &LocalPublisher{svc: svc, timeout: timeout}
}

func (p *LocalPublisher) Enqueue(ctx context.Context, ev Event) <-chan Outcome {
	if err := ev.Validate(); err != nil {
		return rejected(ctx, ev, err)
	}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return rejected(ctx, ev, ErrPublisherStopped)
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	done := make(chan Outcome, 1)
	dctx := context.WithoutCancel(ctx)
	go func() {
		defer p.wg.Done()
		defer close(done)

		if p.timeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(dctx, p.timeout)
			defer cancel()
		}
		report, err := p.svc.Dispatch(dctx, ev)
		logDispatchError(dctx, ev, err)
		done <- Outcome{Report: report, Err: err}
	}()
	return done
}

// Close stops accepting events and waits for running dispatches or ctx.
func (p *LocalPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for dispatches: %w", ctx.Err())
	}
}

// ---------------------------------------------------------------------------
// NATS
// ---------------------------------------------------------------------------

// Subject is where events of kind are published, e.g. portal.notification.news-published.
func Subject(prefix string, kind Kind) string { return prefix + "." + string(kind) }

// SubjectWildcard matches every event under prefix.
func SubjectWildcard(prefix string) string { return prefix + ".>" }

type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsPublisher(nc *nats.Conn, prefix string) *NatsPublisher {
	return &NatsPublisher{nc: nc, prefix: prefix}
}

func (p *NatsPublisher) Enqueue(ctx context.Context, ev Event) <-chan Outcome {
	if err := ev.Validate(); err != nil {
		return rejected(ctx, ev, err)
	}
	data, err := json.Marshal(ev)
	if err == nil {
		err = p.nc.Publish(Subject(p.prefix, ev.Kind), data)
	}
	if err != nil {
		slog.ErrorContext(ctx, "dispatch: publish event", "kind", ev.Kind, "subject_id", ev.SubjectID, "err", err)
		err = fmt.Errorf("publish notification event: %w", err)
	}
	return completed(Outcome{Err: err})
}

// Handler decodes events delivered over NATS and dispatches them.
func Handler(svc Service, timeout time.Duration) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ev, err := DecodeEvent(msg.Data)
		if err != nil {
			slog.Warn("dispatch_worker: dropping malformed event", "subject", msg.Subject, "err", err)
			return
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		_, err = svc.Dispatch(ctx, ev)
		logDispatchError(ctx, ev, err)
	}
}

func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	return ev, ev.Validate()
}

func logDispatchError(ctx context.Context, ev Event, err error) {
	if err == nil || errors.Is(err, ErrNoRecipients) {
		return
	}
	slog.ErrorContext(ctx, "dispatch: failed", "kind", ev.Kind, "subject_id", ev.SubjectID, "err", err)
}
