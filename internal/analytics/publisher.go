package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultDeadline bounds the whole publish attempt, connect included.
	// When it fires the connection is torn down regardless of in-flight
	// state.
	DefaultDeadline = 2 * time.Second
	// DefaultConnectTimeout bounds only the broker dial.
	DefaultConnectTimeout = 1 * time.Second

	exchangeKind = "topic"
)

// ErrDeadlineExceeded marks a publish attempt cut short by the deadline
// timer.
var ErrDeadlineExceeded = errors.New("analytics: publish deadline exceeded")

// connection and channel mirror the slice of the amqp091 API the publisher
// touches, so tests can substitute a fake broker.
type connection interface {
	Channel() (channel, error)
	Close() error
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher performs single-shot, acknowledged publishes to a topic
// exchange. Each call dials a fresh connection with no automatic
// reconnection and releases it exactly once, whichever of publish ack,
// connect error or deadline fires first.
type Publisher struct {
	topic          string
	deadline       time.Duration
	connectTimeout time.Duration
	dial           func() (connection, error)
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithDeadline overrides the overall publish deadline.
func WithDeadline(d time.Duration) PublisherOption {
	return func(p *Publisher) { p.deadline = d }
}

// WithConnectTimeout overrides the broker dial timeout.
func WithConnectTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) { p.connectTimeout = d }
}

func NewPublisher(url, topic string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		topic:          topic,
		deadline:       DefaultDeadline,
		connectTimeout: DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.dial = func() (connection, error) {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Dial: amqp.DefaultDial(p.connectTimeout),
		})
		if err != nil {
			return nil, err
		}
		return amqpConnection{conn}, nil
	}
	return p
}

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Publish attempts one best-effort delivery of evt. It never returns an
// error: failures are logged, and the attempt completes within the
// publisher deadline no matter what the broker does. Callers fire it on a
// detached goroutine and move on.
func (p *Publisher) Publish(ctx context.Context, evt Event) {
	a := &attempt{
		event: evt,
		done:  make(chan struct{}),
	}

	timer := time.AfterFunc(p.deadline, func() {
		a.finish(ctx, ErrDeadlineExceeded)
	})
	defer timer.Stop()

	pubCtx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	conn, err := p.dial()
	if err != nil {
		a.finish(ctx, fmt.Errorf("broker connect: %w", err))
		return
	}
	a.adopt(conn)

	ch, err := conn.Channel()
	if err != nil {
		a.finish(ctx, fmt.Errorf("broker channel: %w", err))
		return
	}

	if err := ch.ExchangeDeclare(p.topic, exchangeKind, true, false, false, false, nil); err != nil {
		a.finish(ctx, fmt.Errorf("exchange declare: %w", err))
		return
	}

	// Confirm mode gives the at-least-once intent an acknowledged publish.
	if err := ch.Confirm(false); err != nil {
		a.finish(ctx, fmt.Errorf("confirm mode: %w", err))
		return
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	body, err := json.Marshal(evt)
	if err != nil {
		a.finish(ctx, fmt.Errorf("event marshal: %w", err))
		return
	}

	routingKey := "notifications." + strings.ToLower(string(evt.Priority))
	err = ch.PublishWithContext(pubCtx, p.topic, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   evt.NotificationID,
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		a.finish(ctx, fmt.Errorf("publish: %w", err))
		return
	}

	// Race the broker ack against the deadline. If the deadline fires
	// first, finish closes the connection, which in turn closes the
	// confirms channel and unblocks this select; the second finish call is
	// a no-op.
	select {
	case c := <-confirms:
		if c.Ack {
			a.finish(ctx, nil)
		} else {
			a.finish(ctx, errors.New("publish nacked by broker"))
		}
	case <-a.done:
	}
}

// attempt tracks one publish's completion state. finish runs the
// close-and-report path exactly once even when several triggers (ack,
// connect error, deadline) fire concurrently.
type attempt struct {
	event Event
	done  chan struct{}

	once     sync.Once
	mu       sync.Mutex
	conn     connection
	finished bool
}

// adopt hands the attempt the connection to release on completion. If the
// attempt already finished (deadline fired mid-dial), the connection is
// closed immediately.
func (a *attempt) adopt(conn connection) {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		_ = conn.Close()
		return
	}
	a.conn = conn
	a.mu.Unlock()
}

func (a *attempt) finish(ctx context.Context, err error) {
	a.once.Do(func() {
		a.mu.Lock()
		a.finished = true
		conn := a.conn
		a.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}

		if err != nil {
			slog.WarnContext(ctx, "analytics publish failed",
				"notification_id", a.event.NotificationID,
				"order_id", a.event.RequestID,
				"error", err,
			)
		} else {
			slog.InfoContext(ctx, "analytics event published",
				"notification_id", a.event.NotificationID,
				"order_id", a.event.RequestID,
				"priority", a.event.Priority,
			)
		}
		close(a.done)
	})
}
