package seating

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

var fixedNow = time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  repository.Store
	engine *Engine
	events *recorder
	logs   *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	return newFixtureOn(t, repository.NewMemoryStore())
}

func newFixtureOn(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	rec := &recorder{}
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		engine: New(store,
			WithLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
			WithNotifier(rec),
			WithOverflowTable(27),
			WithClock(func() time.Time { return fixedNow }),
		),
		events: rec,
		logs:   logs,
	}
}

func (f *fixture) table(number, capacity int) model.Table {
	f.t.Helper()
	t, err := f.engine.CreateTable(f.ctx, model.Table{Number: number, Name: fmt.Sprintf("Table %d", number), Capacity: capacity})
	require.NoError(f.t, err)
	return t
}

func (f *fixture) guest(first, last string) model.Guest {
	f.t.Helper()
	g, err := f.engine.Directory.CreateGuest(f.ctx, model.Guest{FirstName: first, LastName: last})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) seat(g model.Guest, table int) model.SeatAssignment {
	f.t.Helper()
	a, err := f.engine.Allocator.Assign(f.ctx, g.ID, table)
	require.NoError(f.t, err)
	return a.Assignment
}

func (f *fixture) tableStatus(number int) model.TableStatus {
	f.t.Helper()
	ts, err := f.engine.Views.TableStatus(f.ctx, number)
	require.NoError(f.t, err)
	return ts
}

func (f *fixture) verified() {
	f.t.Helper()
	_, err := f.engine.Views.Verify(f.ctx)
	require.NoError(f.t, err)
}

// conflictingStore fails the next N writes of seat numbers with a
// uniqueness violation, as a concurrent allocator would.
type conflictingStore struct {
	repository.Store
	mu       sync.Mutex
	failures int
}

func (s *conflictingStore) fail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return true
	}
	return false
}

func (s *conflictingStore) Insert(ctx context.Context, table string, row repository.Row) (repository.Row, error) {
	if table == repository.TableAssignments && s.fail() {
		return nil, fmt.Errorf("insert into %s: %w", table, repository.ErrUniqueViolation)
	}
	return s.Store.Insert(ctx, table, row)
}

func (s *conflictingStore) Update(ctx context.Context, table string, patch repository.Row, filters ...repository.Filter) ([]repository.Row, error) {
	if _, moving := patch["seat_number"]; moving && table == repository.TableAssignments && s.fail() {
		return nil, fmt.Errorf("update %s: %w", table, repository.ErrUniqueViolation)
	}
	return s.Store.Update(ctx, table, patch, filters...)
}
