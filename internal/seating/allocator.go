package seating

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

// Outcome classifies a successful allocator call.
type Outcome string

const (
	OutcomeAssigned        Outcome = "assigned"
	OutcomeAlreadyAssigned Outcome = "already_assigned"
	OutcomeMoved           Outcome = "moved"
)

// Allocation is the result of Assign or Reassign.
type Allocation struct {
	Assignment model.SeatAssignment `json:"assignment"`
	Outcome    Outcome              `json:"outcome"`
	FromTable  int                  `json:"from_table,omitempty"`
}

// maxAttempts bounds seat computation: the first try plus one retry after a
// uniqueness conflict.
const maxAttempts = 2

// Allocator places guests on seats.  Seat numbers are max+1 per table and are
// never reused implicitly; the storage uniqueness constraints on guest and
// (table, seat) arbitrate concurrent callers.
type Allocator struct {
	*deps
}

// Assign seats the guest at the next seat of tableNumber.  A guest who
// already holds a seat anywhere is reported with OutcomeAlreadyAssigned and
// left untouched.
func (a *Allocator) Assign(ctx context.Context, guestID string, tableNumber int) (Allocation, error) {
	guest, err := a.guestByID(ctx, guestID)
	if err != nil {
		return Allocation{}, err
	}
	if cur, err := a.seatOf(ctx, guestID); err != nil {
		return Allocation{}, err
	} else if cur != nil {
		if guest.CheckInToken == nil || *guest.CheckInToken != cur.Token {
			a.mirrorToken(ctx, guestID, cur.Token)
		}
		a.metrics.allocation("assign", string(OutcomeAlreadyAssigned))
		return Allocation{Assignment: *cur, Outcome: OutcomeAlreadyAssigned}, nil
	}
	table, err := a.tableByNumber(ctx, tableNumber)
	if err != nil {
		return Allocation{}, err
	}

	token := a.tokens.Token(guestID, tableNumber)
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		seat, err := a.nextSeat(ctx, table)
		if err != nil {
			a.metrics.allocation("assign", "rejected")
			return Allocation{}, err
		}
		sa := model.SeatAssignment{GuestID: guestID, TableNumber: tableNumber, SeatNumber: seat, Token: token}
		err = a.seats.Insert(ctx, &sa)
		if err == nil {
			a.mirrorToken(ctx, guestID, token)
			a.metrics.allocation("assign", string(OutcomeAssigned))
			a.emit(ctx, Event{Kind: EventAssigned, GuestID: guestID, TableNumber: tableNumber, SeatNumber: seat})
			return Allocation{Assignment: sa, Outcome: OutcomeAssigned}, nil
		}
		if !errors.Is(err, repository.ErrUniqueViolation) {
			return Allocation{}, err
		}
		lastErr = err
		// the race may have been another call seating this very guest
		if cur, cerr := a.seatOf(ctx, guestID); cerr == nil && cur != nil {
			a.metrics.allocation("assign", string(OutcomeAlreadyAssigned))
			return Allocation{Assignment: *cur, Outcome: OutcomeAlreadyAssigned}, nil
		}
		a.metrics.retry()
		a.log.Debug("seat allocation conflict, retrying", "guest_id", guestID, "table", tableNumber, "seat", seat)
	}
	a.metrics.allocation("assign", "conflict")
	return Allocation{}, fmt.Errorf("%w: assign guest %s to table %d: %v", ErrConflict, guestID, tableNumber, lastErr)
}

// mirrorToken copies token onto the guest record.  The assignment row is
// authoritative, so a failed copy is logged and repaired by the next Assign.
func (a *Allocator) mirrorToken(ctx context.Context, guestID, token string) {
	if err := a.guests.SetToken(ctx, guestID, &token); err != nil {
		a.log.Warn("guest token copy not stored", "guest_id", guestID, "error", err)
	}
}

// Reassign moves the guest to newTable.  The existing row is rewritten in a
// single update (table, seat and token together), so the guest is never
// observable as unassigned and the old seat is never free while the move is
// in flight.  A guest without a seat is simply assigned.
func (a *Allocator) Reassign(ctx context.Context, guestID string, newTable int) (Allocation, error) {
	if _, err := a.guestByID(ctx, guestID); err != nil {
		return Allocation{}, err
	}
	table, err := a.tableByNumber(ctx, newTable)
	if err != nil {
		return Allocation{}, err
	}

	token := a.tokens.Token(guestID, newTable)
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cur, err := a.seatOf(ctx, guestID)
		if err != nil {
			return Allocation{}, err
		}
		if cur == nil {
			return a.Assign(ctx, guestID, newTable)
		}
		if cur.TableNumber == newTable {
			a.metrics.allocation("reassign", string(OutcomeAlreadyAssigned))
			return Allocation{Assignment: *cur, Outcome: OutcomeAlreadyAssigned}, nil
		}
		seat, err := a.nextSeat(ctx, table)
		if err != nil {
			a.metrics.allocation("reassign", "rejected")
			return Allocation{}, err
		}
		moved, err := a.seats.Move(ctx, guestID, cur.TableNumber, newTable, seat, token)
		if err == nil {
			a.mirrorToken(ctx, guestID, token)
			a.metrics.allocation("reassign", string(OutcomeMoved))
			a.emit(ctx, Event{Kind: EventReassigned, GuestID: guestID, TableNumber: newTable, FromTable: cur.TableNumber, SeatNumber: seat})
			return Allocation{Assignment: *moved, Outcome: OutcomeMoved, FromTable: cur.TableNumber}, nil
		}
		if !errors.Is(err, repository.ErrUniqueViolation) && !errors.Is(err, repository.ErrConflict) {
			return Allocation{}, err
		}
		lastErr = err
		a.metrics.retry()
		a.log.Debug("seat move conflict, retrying", "guest_id", guestID, "from", cur.TableNumber, "to", newTable, "seat", seat)
	}
	a.metrics.allocation("reassign", "conflict")
	return Allocation{}, fmt.Errorf("%w: move guest %s to table %d: %v", ErrConflict, guestID, newTable, lastErr)
}

// Unassign frees the guest's seat.  The seat number is not handed out again
// unless the table is compacted.
func (a *Allocator) Unassign(ctx context.Context, guestID string) (model.SeatAssignment, error) {
	removed, err := a.seats.DeleteByGuest(ctx, guestID)
	if err != nil {
		return model.SeatAssignment{}, err
	}
	if len(removed) == 0 {
		return model.SeatAssignment{}, fmt.Errorf("%w: guest %s holds no seat", ErrNotFound, guestID)
	}
	if err := a.guests.SetToken(ctx, guestID, nil); err != nil && !errors.Is(err, repository.ErrGuestNotFound) {
		return model.SeatAssignment{}, err
	}
	sa := removed[0]
	a.metrics.allocation("unassign", "removed")
	a.emit(ctx, Event{Kind: EventUnassigned, GuestID: guestID, TableNumber: sa.TableNumber, SeatNumber: sa.SeatNumber})
	return sa, nil
}

// CompactReport describes a renumbering.
type CompactReport struct {
	TableNumber int                    `json:"table_number"`
	Renumbered  int                    `json:"renumbered"`
	Seats       []model.SeatAssignment `json:"seats"`
}

// Compact renumbers the seats of a table to 1..n keeping their order.  It is
// never run implicitly.  Rows are visited in ascending seat order, so every
// target seat is already free when it is written.
func (a *Allocator) Compact(ctx context.Context, tableNumber int) (CompactReport, error) {
	if _, err := a.tableByNumber(ctx, tableNumber); err != nil {
		return CompactReport{}, err
	}
	seats, err := a.seats.ListByTable(ctx, tableNumber)
	if err != nil {
		return CompactReport{}, err
	}
	rep := CompactReport{TableNumber: tableNumber}
	for i := range seats {
		want := i + 1
		if seats[i].SeatNumber == want {
			continue
		}
		if err := a.seats.SetSeat(ctx, seats[i].ID, want); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return rep, fmt.Errorf("%w: compact table %d: %v", ErrConflict, tableNumber, err)
			}
			return rep, err
		}
		seats[i].SeatNumber = want
		rep.Renumbered++
	}
	rep.Seats = seats
	if rep.Renumbered > 0 {
		a.emit(ctx, Event{Kind: EventCompacted, TableNumber: tableNumber})
	}
	return rep, nil
}

// nextSeat returns max(seat)+1 for the table or a *CapacityError when that
// seat does not exist.
func (a *Allocator) nextSeat(ctx context.Context, table *model.Table) (int, error) {
	seats, err := a.seats.ListByTable(ctx, table.Number)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, s := range seats {
		if s.SeatNumber >= next {
			next = s.SeatNumber + 1
		}
	}
	if next > table.Capacity {
		return 0, &CapacityError{TableNumber: table.Number, Capacity: table.Capacity, Occupied: len(seats)}
	}
	return next, nil
}
