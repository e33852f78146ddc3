// Package seating is the reconciliation engine: it resolves guest
// references, allocates seats, merges duplicate guest records and
// materializes the table and guest read-models.  Every component talks to
// storage only through repository.Store and holds no state of its own, so
// any number of engines may share a store.
package seating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

// Event kinds emitted after successful mutations.
const (
	EventAssigned       = "assigned"
	EventReassigned     = "reassigned"
	EventUnassigned     = "unassigned"
	EventCompacted      = "compacted"
	EventGuestCreated   = "guest_created"
	EventGuestDeleted   = "guest_deleted"
	EventDuplicateMerge = "duplicate_merged"
	EventCheckedIn      = "checked_in"
	EventCheckInUndone  = "checkin_undone"
	EventTableChanged   = "table_changed"
)

// Event describes one committed seating mutation.
type Event struct {
	Kind        string    `json:"kind"`
	GuestID     string    `json:"guest_id,omitempty"`
	TableNumber int       `json:"table_number,omitempty"`
	FromTable   int       `json:"from_table,omitempty"`
	SeatNumber  int       `json:"seat_number,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier is told about every committed mutation.  Notify must not block
// for long and its failures never undo the mutation.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event)

func (f NotifierFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}

type deps struct {
	guests   *repository.GuestRepo
	tables   *repository.TableRepo
	seats    *repository.AssignmentRepo
	log      *slog.Logger
	tokens   TokenFormat
	notifier Notifier
	metrics  *Metrics
	overflow int
	now      func() time.Time
}

func (d *deps) emit(ctx context.Context, e Event) {
	if d.notifier == nil {
		return
	}
	if e.At.IsZero() {
		e.At = d.now()
	}
	d.notifier.Notify(ctx, e)
}

func (d *deps) guestByID(ctx context.Context, id string) (*model.Guest, error) {
	g, err := d.guests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGuestNotFound) {
		return nil, fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	return g, err
}

func (d *deps) tableByNumber(ctx context.Context, number int) (*model.Table, error) {
	t, err := d.tables.GetByNumber(ctx, number)
	if errors.Is(err, repository.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, number)
	}
	return t, err
}

// seatOf returns the guest's assignment, or nil when the guest is unseated.
func (d *deps) seatOf(ctx context.Context, guestID string) (*model.SeatAssignment, error) {
	cur, err := d.seats.GetByGuest(ctx, guestID)
	if errors.Is(err, repository.ErrAssignmentNotFound) {
		return nil, nil
	}
	return cur, err
}

// Option configures an Engine.
type Option func(*deps)

// WithLogger sets the logger used for fallbacks and warnings.
func WithLogger(l *slog.Logger) Option { return func(d *deps) { d.log = l } }

// WithTokenFormat sets the check-in token format.
func WithTokenFormat(f TokenFormat) Option { return func(d *deps) { d.tokens = f } }

// WithNotifier sets the mutation observer.
func WithNotifier(n Notifier) Option { return func(d *deps) { d.notifier = n } }

// WithMetrics sets the prometheus collectors.
func WithMetrics(m *Metrics) Option { return func(d *deps) { d.metrics = m } }

// WithOverflowTable names the table excluded from adult-seat totals.
func WithOverflowTable(number int) Option { return func(d *deps) { d.overflow = number } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(d *deps) { d.now = now } }

// Engine bundles the seating components over one store.
type Engine struct {
	Directory  *Directory
	Allocator  *Allocator
	Duplicates *DuplicateResolver
	Views      *Materializer
	Desk       *CheckInDesk

	d *deps
}

// New wires every component to store.
func New(store repository.Store, opts ...Option) *Engine {
	d := &deps{
		guests: repository.NewGuestRepo(store),
		tables: repository.NewTableRepo(store),
		seats:  repository.NewAssignmentRepo(store),
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	dir := &Directory{deps: d}
	return &Engine{
		Directory:  dir,
		Allocator:  &Allocator{deps: d},
		Duplicates: &DuplicateResolver{deps: d, dir: dir},
		Views:      &Materializer{deps: d},
		Desk:       &CheckInDesk{deps: d},
		d:          d,
	}
}

// Tokens returns the engine's token format.
func (e *Engine) Tokens() TokenFormat { return e.d.tokens }
