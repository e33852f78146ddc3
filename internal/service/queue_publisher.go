// Package queue_publisher publishes seating.changed events to RabbitMQ.
// Errors are logged and never propagated into the seating operation that
// produced the event.
package queue_publisher

import (
    "context"
    "encoding/json"
    "errors"
    "log/slog"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/guest-seating/internal/queue"
    "github.com/iliyamo/guest-seating/internal/seating"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
    PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

// Publisher keeps one connection open and redials lazily after a failure.
type Publisher struct {
    url     string
    timeout time.Duration

    mu   sync.Mutex
    conn *amqp.Connection
    ch   channel
    dial func(url string) (*amqp.Connection, channel, error)
}

// New returns a Publisher for url.  Nothing is dialled until the first event.
func New(url string) *Publisher {
    return &Publisher{url: url, timeout: 2 * time.Second, dial: dialChannel}
}

func dialChannel(url string) (*amqp.Connection, channel, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.SeatingChangedQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, nil, err
    }
    return conn, ch, nil
}

// Notify satisfies seating.Notifier.
func (p *Publisher) Notify(ctx context.Context, e seating.Event) {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
    defer cancel()
    if err := p.Publish(ctx, q.FromSeating(e)); err != nil {
        slog.Warn("rabbitmq: publish seating.changed failed", "event", e.Kind, "guest_id", e.GuestID, "error", err)
    }
}

// Publish sends one event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event q.SeatingChangedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Kind,
        Body:         body,
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch == nil {
        conn, ch, err := p.dial(p.url)
        if err != nil {
            return err
        }
        p.conn, p.ch = conn, ch
    }
    if err := p.ch.PublishWithContext(ctx, "", q.SeatingChangedQueue, false, false, pub); err != nil {
        p.reset()
        return err
    }
    return nil
}

// reset drops the broken connection so the next publish redials.
func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// Close releases the connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch == nil && p.conn == nil {
        return nil
    }
    var errs []error
    if p.ch != nil {
        errs = append(errs, p.ch.Close())
    }
    if p.conn != nil {
        errs = append(errs, p.conn.Close())
    }
    p.conn, p.ch = nil, nil
    return errors.Join(errs...)
}
