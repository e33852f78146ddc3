package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/guest-seating/internal/model"
)

// ErrTableNotFound is returned when no table has the requested number.
var ErrTableNotFound = errors.New("table not found")

// ErrTableExists is returned when creating a table whose number is taken.
var ErrTableExists = errors.New("table number already exists")

// TableRepo maps seating_tables rows to model.Table.  Tables are addressed by
// their guest-visible number everywhere outside this file.
type TableRepo struct {
	store Store
}

// NewTableRepo constructs a TableRepo over the given store.
func NewTableRepo(store Store) *TableRepo { return &TableRepo{store: store} }

// TablePatch lists the editable table properties; nil fields are left
// untouched.
type TablePatch struct {
	Name      *string `json:"name"`
	Capacity  *int    `json:"capacity"`
	IsVIP     *bool   `json:"is_vip"`
	ColorCode *string `json:"color_code"`
	ColorName *string `json:"color_name"`
}

// Create inserts a new table.  It returns ErrTableExists when the number is
// already used.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	if t.Number <= 0 {
		return fmt.Errorf("table number must be positive, got %d", t.Number)
	}
	if t.Capacity < 0 {
		return fmt.Errorf("table capacity must not be negative, got %d", t.Capacity)
	}
	stored, err := r.store.Insert(ctx, TableTables, Row{
		"table_number": t.Number,
		"table_name":   t.Name,
		"capacity":     t.Capacity,
		"is_vip":       t.IsVIP,
		"color_code":   t.ColorCode,
		"color_name":   t.ColorName,
		"created_at":   time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return fmt.Errorf("%w: %d", ErrTableExists, t.Number)
		}
		return err
	}
	*t = tableFromRow(stored)
	return nil
}

// Ensure creates the table when its number is unused and otherwise returns
// the existing one unchanged.
func (r *TableRepo) Ensure(ctx context.Context, t model.Table) (*model.Table, bool, error) {
	existing, err := r.GetByNumber(ctx, t.Number)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrTableNotFound) {
		return nil, false, err
	}
	if err := r.Create(ctx, &t); err != nil {
		if errors.Is(err, ErrTableExists) {
			existing, err := r.GetByNumber(ctx, t.Number)
			return existing, false, err
		}
		return nil, false, err
	}
	return &t, true, nil
}

// GetByNumber retrieves a table by its guest-visible number.
func (r *TableRepo) GetByNumber(ctx context.Context, number int) (*model.Table, error) {
	rows, err := r.store.Select(ctx, TableTables, Eq("table_number", number))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTableNotFound
	}
	t := tableFromRow(rows[0])
	return &t, nil
}

// List returns all tables ordered by number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.store.Select(ctx, TableTables)
	if err != nil {
		return nil, err
	}
	out := make([]model.Table, 0, len(rows))
	for _, row := range rows {
		out = append(out, tableFromRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Update applies patch to the table.  A capacity below the number of seated
// guests is rejected with ErrCapacityBelowOccupancy; seats must be evicted
// first.
func (r *TableRepo) Update(ctx context.Context, number int, patch TablePatch) (*model.Table, error) {
	if _, err := r.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	row := Row{}
	if patch.Name != nil {
		row["table_name"] = *patch.Name
	}
	if patch.Capacity != nil {
		if *patch.Capacity < 0 {
			return nil, fmt.Errorf("table capacity must not be negative, got %d", *patch.Capacity)
		}
		seated, err := r.store.Select(ctx, TableAssignments, Eq("table_number", number))
		if err != nil {
			return nil, err
		}
		if *patch.Capacity < len(seated) {
			return nil, fmt.Errorf("%w: table %d has %d seated guests, capacity %d requested",
				ErrCapacityBelowOccupancy, number, len(seated), *patch.Capacity)
		}
		row["capacity"] = *patch.Capacity
	}
	if patch.IsVIP != nil {
		row["is_vip"] = *patch.IsVIP
	}
	if patch.ColorCode != nil {
		row["color_code"] = *patch.ColorCode
	}
	if patch.ColorName != nil {
		row["color_name"] = *patch.ColorName
	}
	rows, err := r.store.Update(ctx, TableTables, row, Eq("table_number", number))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTableNotFound
	}
	t := tableFromRow(rows[0])
	return &t, nil
}

// Delete removes a table and every assignment at it, assignments first.
// It returns the evicted assignments.
func (r *TableRepo) Delete(ctx context.Context, number int) ([]model.SeatAssignment, error) {
	if _, err := r.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	evicted, err := r.store.Delete(ctx, TableAssignments, Eq("table_number", number))
	if err != nil {
		return nil, fmt.Errorf("evict table %d: %w", number, err)
	}
	for _, a := range evicted {
		if _, err := r.store.Update(ctx, TableGuests, Row{"qr_code": nil}, Eq("id", a.String("guest_id"))); err != nil {
			return nil, err
		}
	}
	if _, err := r.store.Delete(ctx, TableTables, Eq("table_number", number)); err != nil {
		return nil, err
	}
	return assignmentsFromRows(evicted), nil
}

func tableFromRow(row Row) model.Table {
	return model.Table{
		ID:        row.Uint64("id"),
		Number:    row.Int("table_number"),
		Name:      row.String("table_name"),
		Capacity:  row.Int("capacity"),
		IsVIP:     row.Bool("is_vip"),
		ColorCode: row.String("color_code"),
		ColorName: row.String("color_name"),
	}
}
