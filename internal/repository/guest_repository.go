package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/guest-seating/internal/model"
)

// ErrGuestNotFound is returned when a guest lookup yields no rows.
var ErrGuestNotFound = errors.New("guest not found")

// GuestRepo maps guest rows to model.Guest.
type GuestRepo struct {
	store Store
}

// NewGuestRepo constructs a GuestRepo over the given store.
func NewGuestRepo(store Store) *GuestRepo { return &GuestRepo{store: store} }

// Create inserts a guest.  An empty ID is replaced with a new UUID; on
// success g is refreshed from the stored row.
func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	row := Row{
		"id":         g.ID,
		"first_name": g.FirstName,
		"last_name":  g.LastName,
		"email":      g.Email,
		"phone":      g.Phone,
		"checked_in": g.CheckedIn,
		"created_at": time.Now().UTC(),
	}
	if g.CheckedInAt != nil {
		row["checked_in_at"] = g.CheckedInAt.UTC()
	}
	stored, err := r.store.Insert(ctx, TableGuests, row)
	if err != nil {
		return err
	}
	*g = guestFromRow(stored)
	return nil
}

// GetByID retrieves a guest by id.
func (r *GuestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	rows, err := r.store.Select(ctx, TableGuests, Eq("id", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrGuestNotFound
	}
	g := guestFromRow(rows[0])
	return &g, nil
}

// FindByName returns guests whose first and last names are exactly equal
// (case-sensitive) to the given values.
func (r *GuestRepo) FindByName(ctx context.Context, first, last string) ([]model.Guest, error) {
	rows, err := r.store.Select(ctx, TableGuests, Eq("first_name", first), Eq("last_name", last))
	if err != nil {
		return nil, err
	}
	return exactOnly(guestsFromRows(rows), first, last), nil
}

// FindLastNameLike returns guests whose last name contains pattern,
// ignoring case.
func (r *GuestRepo) FindLastNameLike(ctx context.Context, pattern string) ([]model.Guest, error) {
	rows, err := r.store.Select(ctx, TableGuests, ILike("last_name", pattern))
	if err != nil {
		return nil, err
	}
	return guestsFromRows(rows), nil
}

// FindByToken returns the guest carrying the given check-in token.
func (r *GuestRepo) FindByToken(ctx context.Context, token string) (*model.Guest, error) {
	rows, err := r.store.Select(ctx, TableGuests, Eq("qr_code", token))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrGuestNotFound
	}
	g := guestFromRow(rows[0])
	return &g, nil
}

// List returns every guest ordered by last name, first name and id.
func (r *GuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	rows, err := r.store.Select(ctx, TableGuests)
	if err != nil {
		return nil, err
	}
	return guestsFromRows(rows), nil
}

// SetToken stores (or clears, when token is nil) the guest's copy of its
// assignment token.
func (r *GuestRepo) SetToken(ctx context.Context, id string, token *string) error {
	rows, err := r.store.Update(ctx, TableGuests, Row{"qr_code": token}, Eq("id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// SetCheckIn records or clears a guest's check-in.
func (r *GuestRepo) SetCheckIn(ctx context.Context, id string, checkedIn bool, at *time.Time) (*model.Guest, error) {
	patch := Row{"checked_in": checkedIn, "checked_in_at": nil}
	if checkedIn && at != nil {
		patch["checked_in_at"] = at.UTC()
	}
	rows, err := r.store.Update(ctx, TableGuests, patch, Eq("id", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrGuestNotFound
	}
	g := guestFromRow(rows[0])
	return &g, nil
}

// Delete removes a guest together with its seat assignment.  The assignment
// is deleted first so no orphan row can exist.
func (r *GuestRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Delete(ctx, TableAssignments, Eq("guest_id", id)); err != nil {
		return fmt.Errorf("delete assignment of guest %s: %w", id, err)
	}
	rows, err := r.store.Delete(ctx, TableGuests, Eq("id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// exactOnly drops rows a case-insensitive collation let through.
func exactOnly(gs []model.Guest, first, last string) []model.Guest {
	out := gs[:0]
	for _, g := range gs {
		if g.FirstName == first && g.LastName == last {
			out = append(out, g)
		}
	}
	return out
}

func guestsFromRows(rows []Row) []model.Guest {
	out := make([]model.Guest, 0, len(rows))
	for _, row := range rows {
		out = append(out, guestFromRow(row))
	}
	SortGuests(out)
	return out
}

// SortGuests orders guests by last name, first name, then id.
func SortGuests(gs []model.Guest) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].LastName != gs[j].LastName {
			return gs[i].LastName < gs[j].LastName
		}
		if gs[i].FirstName != gs[j].FirstName {
			return gs[i].FirstName < gs[j].FirstName
		}
		return gs[i].ID < gs[j].ID
	})
}

func guestFromRow(row Row) model.Guest {
	return model.Guest{
		ID:           row.String("id"),
		FirstName:    row.String("first_name"),
		LastName:     row.String("last_name"),
		Email:        row.StringPtr("email"),
		Phone:        row.StringPtr("phone"),
		CheckedIn:    row.Bool("checked_in"),
		CheckedInAt:  row.TimePtr("checked_in_at"),
		CheckInToken: row.StringPtr("qr_code"),
		CreatedAt:    row.Time("created_at"),
	}
}
