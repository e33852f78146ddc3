package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/guest-seating/internal/model"
)

// ErrAssignmentNotFound is returned when a guest holds no seat or a token
// matches no assignment.
var ErrAssignmentNotFound = errors.New("seat assignment not found")

// AssignmentRepo maps seat_assignments rows to model.SeatAssignment.  The
// table reference is always the guest-visible table number.
type AssignmentRepo struct {
	store Store
}

// NewAssignmentRepo constructs an AssignmentRepo over the given store.
func NewAssignmentRepo(store Store) *AssignmentRepo { return &AssignmentRepo{store: store} }

// Insert stores a new assignment.  Uniqueness violations (guest already
// seated, seat already taken) are returned wrapped in ErrUniqueViolation.
func (r *AssignmentRepo) Insert(ctx context.Context, a *model.SeatAssignment) error {
	stored, err := r.store.Insert(ctx, TableAssignments, Row{
		"guest_id":     a.GuestID,
		"table_number": a.TableNumber,
		"seat_number":  a.SeatNumber,
		"qr_code":      a.Token,
		"checked_in":   a.CheckedIn,
		"created_at":   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	*a = assignmentFromRow(stored)
	return nil
}

// GetByGuest returns the guest's assignment.
func (r *AssignmentRepo) GetByGuest(ctx context.Context, guestID string) (*model.SeatAssignment, error) {
	return r.one(ctx, Eq("guest_id", guestID))
}

// GetByToken returns the assignment carrying token.
func (r *AssignmentRepo) GetByToken(ctx context.Context, token string) (*model.SeatAssignment, error) {
	return r.one(ctx, Eq("qr_code", token))
}

func (r *AssignmentRepo) one(ctx context.Context, f Filter) (*model.SeatAssignment, error) {
	rows, err := r.store.Select(ctx, TableAssignments, f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrAssignmentNotFound
	}
	a := assignmentFromRow(rows[0])
	return &a, nil
}

// ListByTable returns the assignments at a table ordered by seat number.
func (r *AssignmentRepo) ListByTable(ctx context.Context, tableNumber int) ([]model.SeatAssignment, error) {
	rows, err := r.store.Select(ctx, TableAssignments, Eq("table_number", tableNumber))
	if err != nil {
		return nil, err
	}
	return assignmentsFromRows(rows), nil
}

// List returns every assignment ordered by table number and seat number.
func (r *AssignmentRepo) List(ctx context.Context) ([]model.SeatAssignment, error) {
	rows, err := r.store.Select(ctx, TableAssignments)
	if err != nil {
		return nil, err
	}
	return assignmentsFromRows(rows), nil
}

// MaxSeat returns the highest seat number used at a table, 0 when empty.
func (r *AssignmentRepo) MaxSeat(ctx context.Context, tableNumber int) (int, error) {
	seats, err := r.ListByTable(ctx, tableNumber)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, a := range seats {
		if a.SeatNumber > max {
			max = a.SeatNumber
		}
	}
	return max, nil
}

// Move rewrites the guest's row to a new table, seat and token in a single
// row update.  fromTable guards against a concurrent move: when the row is
// no longer at fromTable nothing is written and ErrConflict is returned.
func (r *AssignmentRepo) Move(ctx context.Context, guestID string, fromTable, toTable, seat int, token string) (*model.SeatAssignment, error) {
	rows, err := r.store.Update(ctx, TableAssignments, Row{
		"table_number": toTable,
		"seat_number":  seat,
		"qr_code":      token,
	}, Eq("guest_id", guestID), Eq("table_number", fromTable))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrConflict
	}
	a := assignmentFromRow(rows[0])
	return &a, nil
}

// SetSeat renumbers a single assignment.
func (r *AssignmentRepo) SetSeat(ctx context.Context, id uint64, seat int) error {
	rows, err := r.store.Update(ctx, TableAssignments, Row{"seat_number": seat}, Eq("id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// SetCheckedIn flips the checked-in flag of the guest's assignment.  A guest
// without assignment is not an error.
func (r *AssignmentRepo) SetCheckedIn(ctx context.Context, guestID string, checkedIn bool) error {
	_, err := r.store.Update(ctx, TableAssignments, Row{"checked_in": checkedIn}, Eq("guest_id", guestID))
	return err
}

// DeleteByGuest removes the guest's assignment and returns what was removed.
func (r *AssignmentRepo) DeleteByGuest(ctx context.Context, guestID string) ([]model.SeatAssignment, error) {
	rows, err := r.store.Delete(ctx, TableAssignments, Eq("guest_id", guestID))
	if err != nil {
		return nil, err
	}
	return assignmentsFromRows(rows), nil
}

func assignmentsFromRows(rows []Row) []model.SeatAssignment {
	out := make([]model.SeatAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, assignmentFromRow(row))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TableNumber != out[j].TableNumber {
			return out[i].TableNumber < out[j].TableNumber
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out
}

func assignmentFromRow(row Row) model.SeatAssignment {
	return model.SeatAssignment{
		ID:          row.Uint64("id"),
		GuestID:     row.String("guest_id"),
		TableNumber: row.Int("table_number"),
		SeatNumber:  row.Int("seat_number"),
		Token:       row.String("qr_code"),
		CheckedIn:   row.Bool("checked_in"),
		CreatedAt:   row.Time("created_at"),
	}
}
