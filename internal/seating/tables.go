package seating

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

// CreateTable adds a table.  A taken number is ErrConflict.
func (e *Engine) CreateTable(ctx context.Context, t model.Table) (model.Table, error) {
	if err := e.d.tables.Create(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrTableExists) {
			return model.Table{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return model.Table{}, err
	}
	e.d.emit(ctx, Event{Kind: EventTableChanged, TableNumber: t.Number})
	return t, nil
}

// EnsureTable creates the table unless its number already exists.
func (e *Engine) EnsureTable(ctx context.Context, t model.Table) (model.Table, bool, error) {
	got, created, err := e.d.tables.Ensure(ctx, t)
	if err != nil {
		return model.Table{}, false, err
	}
	if created {
		e.d.emit(ctx, Event{Kind: EventTableChanged, TableNumber: got.Number})
	}
	return *got, created, nil
}

// UpdateTable edits a table.  Capacity cannot drop below the number of
// seated guests; evict first.
func (e *Engine) UpdateTable(ctx context.Context, number int, patch repository.TablePatch) (model.Table, error) {
	t, err := e.d.tables.Update(ctx, number, patch)
	switch {
	case errors.Is(err, repository.ErrTableNotFound):
		return model.Table{}, fmt.Errorf("%w: table %d", ErrNotFound, number)
	case errors.Is(err, repository.ErrCapacityBelowOccupancy):
		return model.Table{}, fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	case err != nil:
		return model.Table{}, err
	}
	e.d.emit(ctx, Event{Kind: EventTableChanged, TableNumber: number})
	return *t, nil
}

// DeleteTable removes a table after evicting every guest seated at it.
func (e *Engine) DeleteTable(ctx context.Context, number int) ([]model.SeatAssignment, error) {
	evicted, err := e.d.tables.Delete(ctx, number)
	if errors.Is(err, repository.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	for _, s := range evicted {
		e.d.log.Info("guest evicted with table", "guest_id", s.GuestID, "table", number, "seat", s.SeatNumber)
	}
	e.d.emit(ctx, Event{Kind: EventTableChanged, TableNumber: number})
	return evicted, nil
}

// Table returns one table.
func (e *Engine) Table(ctx context.Context, number int) (model.Table, error) {
	t, err := e.d.tableByNumber(ctx, number)
	if err != nil {
		return model.Table{}, err
	}
	return *t, nil
}

// ListTables returns every table ordered by number.
func (e *Engine) ListTables(ctx context.Context) ([]model.Table, error) {
	return e.d.tables.List(ctx)
}
