package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events in an inbox drained by a single goroutine.
type KafkaPublisher struct {
	w       messageWriter
	log     *slog.Logger
	mu      sync.RWMutex
	closed  bool
	cancel  context.CancelFunc
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, buf int, log *slog.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, buf, log)
}

func newKafkaPublisher(w messageWriter, buf int, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w:       w,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start launches the delivery loop. It exits once Close has been called and
// the inbox is drained. Cancelling ctx aborts the in-flight write and drops
// whatever is still buffered.
func (p *KafkaPublisher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		defer close(p.closeCh)
		defer cancel()
		dropped := 0
		for m := range p.inbox {
			if ctx.Err() != nil {
				dropped++
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			if err := p.w.WriteMessages(wctx, m); err != nil {
				p.log.Error("kafka write failed", "key", string(m.Key), "error", err)
			}
			wcancel()
		}
		if dropped > 0 {
			p.log.Warn("delivery aborted, buffered events dropped", "count", dropped)
		}
		if err := p.w.Close(); err != nil {
			p.log.Error("kafka writer close failed", "error", err)
		}
	}()
}

// Publish enqueues ev without blocking. A full inbox drops the event.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, ev Envelope) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.log.ErrorContext(ctx, "encode event", "event_type", ev.EventType, "error", err)
		return
	}
	m := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.WarnContext(ctx, "publisher closed, event dropped", "event_type", ev.EventType, "key", key)
		return
	}
	select {
	case p.inbox <- m:
	default:
		p.log.WarnContext(ctx, "event inbox full, event dropped", "event_type", ev.EventType, "key", key)
	}
}

// Close stops accepting events; buffered ones are still flushed.
func (p *KafkaPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the delivery loop has flushed and exited.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }

// Shutdown closes the publisher and waits for the buffered events to flush.
// If ctx expires first the delivery loop is cancelled, the remaining events
// are dropped and ctx.Err() is returned.
func (p *KafkaPublisher) Shutdown(ctx context.Context) error {
	p.Close()

	p.mu.RLock()
	cancel := p.cancel
	p.mu.RUnlock()
	if cancel == nil {
		return nil
	}

	select {
	case <-p.closeCh:
		return nil
	case <-ctx.Done():
		cancel()
		<-p.closeCh
		return ctx.Err()
	}
}
