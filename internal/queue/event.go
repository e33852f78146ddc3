// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/guest-seating/internal/seating"
)

// SeatingChangedQueue is the durable queue every committed seating mutation
// is published to.
const SeatingChangedQueue = "seating.changed"

// SeatingChangedEvent is published after a seating mutation commits.  It
// carries enough for downstream consumers (audit log, door displays) to act
// without querying the store.
type SeatingChangedEvent struct {
    Kind        string `json:"kind"`
    GuestID     string `json:"guest_id,omitempty"`
    TableNumber int    `json:"table_number,omitempty"`
    FromTable   int    `json:"from_table,omitempty"`
    SeatNumber  int    `json:"seat_number,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}

// FromSeating converts an engine event into its wire form.
func FromSeating(e seating.Event) SeatingChangedEvent {
    return SeatingChangedEvent{
        Kind:        e.Kind,
        GuestID:     e.GuestID,
        TableNumber: e.TableNumber,
        FromTable:   e.FromTable,
        SeatNumber:  e.SeatNumber,
        OccurredAt:  e.At.UTC().Format(time.RFC3339),
    }
}
