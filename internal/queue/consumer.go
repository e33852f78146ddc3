// Package queue also contains the background consumer that listens to the
// seating.changed queue and appends an audit trail to logs/seating.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartSeatingConsumer connects to RabbitMQ, declares the seating.changed
// queue (durable) and appends every message to logDir/seating.log.  It
// reconnects with exponential backoff and returns only when ctx is done.
func StartSeatingConsumer(ctx context.Context, url, logDir string) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            slog.Warn("seating-consumer: failed to dial broker", "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        slog.Warn("seating-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        slog.Warn("seating-consumer: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(SeatingChangedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(SeatingChangedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "seating.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(d.Body, f); err != nil {
                slog.Error("seating-consumer: handle message failed", "error", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handleMessage writes one audit line for a seating.changed payload.
func handleMessage(body []byte, w io.Writer) error {
    var ev SeatingChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Kind == "" {
        return errors.New("event without kind")
    }
    parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Kind)}
    if ev.GuestID != "" {
        parts = append(parts, "guest_id="+ev.GuestID)
    }
    if ev.FromTable != 0 {
        parts = append(parts, fmt.Sprintf("from_table=%d", ev.FromTable))
    }
    if ev.TableNumber != 0 {
        parts = append(parts, fmt.Sprintf("table=%d", ev.TableNumber))
    }
    if ev.SeatNumber != 0 {
        parts = append(parts, fmt.Sprintf("seat=%d", ev.SeatNumber))
    }
    if _, err := io.WriteString(w, strings.Join(parts, " | ")+"\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
