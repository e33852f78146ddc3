package seating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

// ErrInvalidToken means a scanned string is not a check-in token at all.
var ErrInvalidToken = errors.New("invalid check-in token")

// CheckInResult is what the door scanner shows.
type CheckInResult struct {
	Guest            model.Guest          `json:"guest"`
	Seat             model.SeatAssignment `json:"seat"`
	TableName        string               `json:"table_name"`
	AlreadyCheckedIn bool                 `json:"already_checked_in"`
}

// CheckInDesk checks guests in by the token of their current assignment.
type CheckInDesk struct {
	*deps
}

// CheckIn marks the holder of token as arrived.  Tokens of earlier
// assignments match nothing and yield ErrNotFound.  Scanning twice is
// reported through AlreadyCheckedIn, not as an error.
func (c *CheckInDesk) CheckIn(ctx context.Context, token string) (CheckInResult, error) {
	token = strings.TrimSpace(token)
	if !c.tokens.Valid(token) {
		c.metrics.checkIn("invalid")
		return CheckInResult{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	seat, err := c.seats.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrAssignmentNotFound) {
		c.metrics.checkIn("unknown")
		return CheckInResult{}, fmt.Errorf("%w: no assignment holds token %q", ErrNotFound, token)
	}
	if err != nil {
		return CheckInResult{}, err
	}
	g, err := c.guestByID(ctx, seat.GuestID)
	if err != nil {
		return CheckInResult{}, err
	}
	res := CheckInResult{Guest: *g, Seat: *seat}
	if t, err := c.tables.GetByNumber(ctx, seat.TableNumber); err == nil {
		res.TableName = t.Name
	}
	if g.CheckedIn {
		res.AlreadyCheckedIn = true
		c.metrics.checkIn("repeat")
		return res, nil
	}

	now := c.now().UTC()
	updated, err := c.guests.SetCheckIn(ctx, g.ID, true, &now)
	if err != nil {
		return CheckInResult{}, err
	}
	if err := c.seats.SetCheckedIn(ctx, g.ID, true); err != nil {
		return CheckInResult{}, err
	}
	res.Guest = *updated
	res.Seat.CheckedIn = true
	c.metrics.checkIn("ok")
	c.log.Info("guest checked in", "guest_id", g.ID, "guest", g.FullName(), "table", seat.TableNumber)
	c.emit(ctx, Event{Kind: EventCheckedIn, GuestID: g.ID, TableNumber: seat.TableNumber, SeatNumber: seat.SeatNumber})
	return res, nil
}

// UndoCheckIn clears a guest's check-in.
func (c *CheckInDesk) UndoCheckIn(ctx context.Context, guestID string) (model.Guest, error) {
	if _, err := c.guestByID(ctx, guestID); err != nil {
		return model.Guest{}, err
	}
	g, err := c.guests.SetCheckIn(ctx, guestID, false, nil)
	if err != nil {
		return model.Guest{}, err
	}
	if err := c.seats.SetCheckedIn(ctx, guestID, false); err != nil {
		return model.Guest{}, err
	}
	c.emit(ctx, Event{Kind: EventCheckInUndone, GuestID: guestID})
	return *g, nil
}
