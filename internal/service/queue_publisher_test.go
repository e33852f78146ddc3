package queue_publisher

import (
    "context"
    "encoding/json"
    "errors"
    "testing"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    q "github.com/iliyamo/guest-seating/internal/queue"
    "github.com/iliyamo/guest-seating/internal/seating"
)

type fakeChannel struct {
    published []amqp.Publishing
    keys      []string
    fail      error
    closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
    if f.fail != nil {
        return f.fail
    }
    f.keys = append(f.keys, key)
    f.published = append(f.published, msg)
    return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func TestNotifyPublishesPersistentJSON(t *testing.T) {
    ch := &fakeChannel{}
    dials := 0
    p := New("amqp://unused")
    p.dial = func(string) (*amqp.Connection, channel, error) { dials++; return nil, ch, nil }

    p.Notify(context.Background(), seating.Event{
        Kind: seating.EventAssigned, GuestID: "g-1", TableNumber: 5, SeatNumber: 2,
        At: time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC),
    })
    p.Notify(context.Background(), seating.Event{Kind: seating.EventUnassigned, GuestID: "g-1", TableNumber: 5})

    require.Len(t, ch.published, 2)
    assert.Equal(t, 1, dials)
    assert.Equal(t, []string{q.SeatingChangedQueue, q.SeatingChangedQueue}, ch.keys)
    msg := ch.published[0]
    assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
    assert.Equal(t, "application/json", msg.ContentType)
    assert.Equal(t, seating.EventAssigned, msg.Type)

    var ev q.SeatingChangedEvent
    require.NoError(t, json.Unmarshal(msg.Body, &ev))
    assert.Equal(t, q.SeatingChangedEvent{Kind: "assigned", GuestID: "g-1", TableNumber: 5, SeatNumber: 2, OccurredAt: "2024-06-15T17:00:00Z"}, ev)
}

func TestPublishFailureRedials(t *testing.T) {
    broken := &fakeChannel{fail: errors.New("channel closed")}
    healthy := &fakeChannel{}
    chans := []*fakeChannel{broken, healthy}
    p := New("amqp://unused")
    p.dial = func(string) (*amqp.Connection, channel, error) {
        ch := chans[0]
        chans = chans[1:]
        return nil, ch, nil
    }

    err := p.Publish(context.Background(), q.SeatingChangedEvent{Kind: "assigned"})
    assert.Error(t, err)
    assert.True(t, broken.closed)

    require.NoError(t, p.Publish(context.Background(), q.SeatingChangedEvent{Kind: "assigned"}))
    assert.Len(t, healthy.published, 1)
    require.NoError(t, p.Close())
    assert.True(t, healthy.closed)
}

func TestNotifySwallowsDialErrors(t *testing.T) {
    p := New("amqp://unused")
    p.dial = func(string) (*amqp.Connection, channel, error) { return nil, nil, errors.New("refused") }
    assert.NotPanics(t, func() {
        p.Notify(context.Background(), seating.Event{Kind: seating.EventAssigned})
    })
    require.NoError(t, p.Close())
}
