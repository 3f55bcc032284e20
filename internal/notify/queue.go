// Package notify delivers best-effort human notifications for order events.
// Events are queued on a buffered channel and drained by one background
// goroutine; when the queue is full the event is dropped with a log line
// rather than blocking the transaction that produced it.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
)

// Sink delivers one event to one channel (telegram, email webhook).
type Sink interface {
	Deliver(ctx context.Context, event application.NotificationEvent) error
	Name() string
}

// Queue implements application.Notifier.
type Queue struct {
	events chan application.NotificationEvent
	sinks  []Sink
	logger *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewQueue(cfg config.NotifyConfig, logger *slog.Logger, sinks ...Sink) *Queue {
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	return &Queue{
		events: make(chan application.NotificationEvent, size),
		sinks:  sinks,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Notify enqueues the event without blocking. A full queue drops the event.
func (q *Queue) Notify(event application.NotificationEvent) {
	select {
	case q.events <- event:
	default:
		q.logger.Warn("notification queue full, dropping event",
			"kind", event.Kind,
			"order", event.OrderNumber,
		)
	}
}

// Start launches the delivery goroutine.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.stop:
				return
			case event := <-q.events:
				q.deliver(ctx, event)
			}
		}
	}()
	q.logger.Info("notification queue started", "sinks", len(q.sinks))
}

// Stop signals the delivery goroutine and waits for it. Events still queued
// are discarded.
func (q *Queue) Stop() {
	close(q.stop)
	q.wg.Wait()
	q.logger.Info("notification queue stopped", "undelivered", len(q.events))
}

func (q *Queue) deliver(ctx context.Context, event application.NotificationEvent) {
	for _, sink := range q.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			q.logger.Error("notification delivery failed",
				"sink", sink.Name(),
				"kind", event.Kind,
				"order", event.OrderNumber,
				"error", err,
			)
		}
	}
}
