// Package eventbus provides the process-wide asynchronous publish/subscribe
// mechanism decoupling transaction outcomes from the parties that react to
// them. Publishing enqueues onto a bounded queue and returns; background
// workers fan events out to subscribers outside the publisher's call stack.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/triopay/triopay/pkg/domain/events"
)

// ErrBusClosed is returned by Publish after Shutdown has begun.
var ErrBusClosed = errors.New("event bus is shut down")

// Subscriber receives events of the kinds it subscribed to. OnEvent is
// invoked from a dispatch worker goroutine, never from the publisher's
// call stack, and must tolerate concurrent invocation with the
// subscriber's own accessors.
type Subscriber interface {
	OnEvent(ctx context.Context, e events.Event)
}

// Func adapts a plain function to the Subscriber interface.
type Func func(ctx context.Context, e events.Event)

// OnEvent implements Subscriber.
func (f Func) OnEvent(ctx context.Context, e events.Event) { f(ctx, e) }

// Observer is a subscriber that declares its own interest over event
// kinds, so it can be wired with Attach instead of kind-by-kind Subscribe
// calls.
type Observer interface {
	Subscriber
	Name() string
	InterestedIn(kind events.EventType) bool
}

// Publisher is the narrow producing side of the bus, for collaborators
// that only ever publish.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Config holds the bus tunables.
type Config struct {
	// QueueSize bounds each worker's queue. A full queue blocks the
	// publisher (backpressure); events are never dropped while the bus
	// is running.
	QueueSize int
	// Workers is the number of dispatch goroutines. Each subscriber is
	// pinned to a single worker and every publish is enqueued to every
	// worker queue in turn, so each subscriber sees a single publisher's
	// events in publish order while distinct subscribers dispatch in
	// parallel.
	Workers int
	// ShutdownTimeout bounds the drain performed by Shutdown when the
	// caller's context carries no earlier deadline.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the stock bus configuration.
func DefaultConfig() Config {
	return Config{QueueSize: 256, Workers: 2, ShutdownTimeout: 5 * time.Second}
}

// Bus is the asynchronous event dispatcher. Use New for an isolated
// instance (tests), or Init/Default for the process-wide singleton.
type Bus struct {
	cfg Config
	log *slog.Logger

	mu          sync.RWMutex
	subscribers map[events.EventType][]subscription

	queues []chan events.Event
	wg     sync.WaitGroup

	// intake fences Publish against queue closure: publishers hold the
	// read side while enqueueing, Shutdown takes the write side before
	// closing the queues.
	intake sync.RWMutex
	closed atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a stopped bus. Call Start before publishing, or events will
// sit in the queues until workers come up.
func New(cfg Config, logger *slog.Logger) (*Bus, error) {
	if cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("event bus: queue size must be positive, got %d", cfg.QueueSize)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("event bus: worker count must be positive, got %d", cfg.Workers)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	b := &Bus{
		cfg:         cfg,
		log:         logger.With("component", "eventbus"),
		subscribers: make(map[events.EventType][]subscription),
		queues:      make([]chan events.Event, cfg.Workers),
	}
	for i := range b.queues {
		b.queues[i] = make(chan events.Event, cfg.QueueSize)
	}
	return b, nil
}

// Start launches the dispatch workers. Safe to call more than once.
func (b *Bus) Start() {
	b.startOnce.Do(func() {
		for i, q := range b.queues {
			b.wg.Add(1)
			go b.dispatch(i, q)
		}
		b.log.Info("event bus started",
			"workers", b.cfg.Workers, "queue_size", b.cfg.QueueSize)
	})
}

// subscription pins a subscriber to one worker. The pin is derived from
// the subscriber itself, so the same subscriber registered for several
// kinds always lands on the same worker and sees one publisher's events
// in publish order across kinds.
type subscription struct {
	sub    Subscriber
	worker int
}

// Subscribe registers sub for events of the given kind. Multiple
// subscriptions for the same kind are permitted; each subscriber receives
// every event of the kind, in publish order, at most once.
func (b *Bus) Subscribe(kind events.EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], subscription{
		sub:    sub,
		worker: subscriberShard(sub, len(b.queues)),
	})
}

// Unsubscribe removes sub from the given kind's subscriber list. An
// event already handed to a worker may still be delivered once; no
// further events of the kind will be.
func (b *Bus) Unsubscribe(kind events.EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[kind]
	for i, s := range subs {
		if sameSubscriber(s.sub, sub) {
			b.subscribers[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Attach subscribes obs to every event kind its interest predicate
// accepts.
func (b *Bus) Attach(obs Observer) {
	for _, kind := range events.Kinds() {
		if obs.InterestedIn(kind) {
			b.Subscribe(kind, obs)
		}
	}
	b.log.Info("observer attached", "observer", obs.Name())
}

// Detach unsubscribes obs from every event kind.
func (b *Bus) Detach(obs Observer) {
	for _, kind := range events.Kinds() {
		b.Unsubscribe(kind, obs)
	}
}

// Publish enqueues the event and returns without waiting for delivery.
// The event goes to every worker queue in turn, so each worker's queue
// carries a single publisher's events in publish order. Publish blocks
// only when a queue is full (backpressure) and returns ErrBusClosed once
// Shutdown has begun. A context expiring mid-enqueue aborts the
// remaining queues; at-most-once delivery per subscriber still holds.
func (b *Bus) Publish(ctx context.Context, e events.Event) error {
	b.intake.RLock()
	defer b.intake.RUnlock()
	if b.closed.Load() {
		return ErrBusClosed
	}
	for _, q := range b.queues {
		select {
		case q <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown stops accepting new events, drains the queues to completion
// (or to the configured timeout) and terminates the workers. It is the
// bus's only blocking operation.
func (b *Bus) Shutdown(ctx context.Context) error {
	var err error
	b.stopOnce.Do(func() {
		b.closed.Store(true)
		// Wait for in-flight Publish calls before closing the queues.
		b.intake.Lock()
		for _, q := range b.queues {
			close(q)
		}
		b.intake.Unlock()

		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.cfg.ShutdownTimeout)
			defer cancel()
		}

		done := make(chan struct{})
		go func() {
			b.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			b.log.Info("event bus drained")
		case <-ctx.Done():
			err = fmt.Errorf("event bus shutdown: %w", ctx.Err())
			b.log.Warn("event bus shutdown timed out before drain completed")
		}
	})
	return err
}

// dispatch is a worker loop: it dequeues events and invokes each of the
// event kind's subscribers pinned to this worker. A subscriber panic is
// recovered and logged; it never stops the loop or delivery to other
// subscribers.
func (b *Bus) dispatch(worker int, q <-chan events.Event) {
	defer b.wg.Done()
	for e := range q {
		b.mu.RLock()
		subs := append([]subscription(nil), b.subscribers[e.Type]...)
		b.mu.RUnlock()
		for _, s := range subs {
			if s.worker != worker {
				continue
			}
			b.deliver(worker, s.sub, e)
		}
	}
}

func (b *Bus) deliver(worker int, sub Subscriber, e events.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic recovered in subscriber",
				"worker", worker,
				"event_type", e.Type,
				"event_id", e.ID,
				"panic", r,
			)
		}
	}()
	sub.OnEvent(context.Background(), e)
}

// subscriberShard maps a subscriber to a worker index. Pointer-like
// subscribers (pointers and Func values, which is what observers and
// callbacks are in practice) spread across workers; anything else runs
// on worker zero.
func subscriberShard(sub Subscriber, workers int) int {
	if workers == 1 {
		return 0
	}
	v := reflect.ValueOf(sub)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return int(v.Pointer() % uintptr(workers))
	}
	return 0
}

// sameSubscriber reports whether two subscriber values identify the same
// subscription. Plain == would panic on func-typed subscribers such as
// Func, so those compare by code pointer instead.
func sameSubscriber(a, b Subscriber) bool {
	if a == nil || b == nil {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return false
	}
	return a == b
}
