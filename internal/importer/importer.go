package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/seating"
)

// Item actions.
const (
	ActionAssigned        = "assigned"
	ActionAlreadyAssigned = "already_assigned"
	ActionMoved           = "moved"
	ActionSeatedElsewhere = "seated_elsewhere"
	ActionFailed          = "failed"
)

// OverflowTable describes the table created for sentinel lines.
type OverflowTable struct {
	Number   int
	Name     string
	Capacity int
}

// Options configures an import run.
type Options struct {
	// Sentinel is the designator meaning "overflow table".
	Sentinel string
	// Overflow is created when missing before any line is processed.
	Overflow OverflowTable
	// Move reassigns guests already seated at another table than the one
	// the plan names.  Without it such guests are left alone and reported.
	Move bool
}

// ItemResult is the outcome for one plan line.
type ItemResult struct {
	Line        int    `json:"line"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TableNumber int    `json:"table_number"`
	GuestID     string `json:"guest_id,omitempty"`
	Created     bool   `json:"created,omitempty"`
	Action      string `json:"action"`
	SeatNumber  int    `json:"seat_number,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Result summarizes an import run.  Err fields are strings so a Result can
// be printed or serialized as is.
type Result struct {
	Items        []ItemResult    `json:"items"`
	Skipped      []Skip          `json:"skipped"`
	Created      int             `json:"created"`
	Assigned     int             `json:"assigned"`
	Unchanged    int             `json:"unchanged"`
	Moved        int             `json:"moved"`
	Elsewhere    int             `json:"seated_elsewhere"`
	Failed       int             `json:"failed"`
	Verification *seating.Report `json:"verification,omitempty"`
	VerifyError  string          `json:"verify_error,omitempty"`
}

// Importer drives the seating engine over a parsed plan.
type Importer struct {
	engine *seating.Engine
	opts   Options
	log    *slog.Logger
}

// New returns an importer bound to engine.
func New(engine *seating.Engine, opts Options, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{engine: engine, opts: opts, log: log}
}

// Import parses r and runs every record.  Only read and overflow-table
// setup failures are returned as errors; per-line failures land in the
// result.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	parsed, err := Parse(r, ParseOptions{Sentinel: im.opts.Sentinel, OverflowTable: im.opts.Overflow.Number})
	if err != nil {
		return Result{}, fmt.Errorf("parse seating plan: %w", err)
	}
	res, err := im.Run(ctx, parsed.Records)
	res.Skipped = parsed.Skipped
	return res, err
}

// Run processes records in order.  It never stops at a failing record and is
// safe to run again on the same plan: guests are reused and already seated
// guests are left in place.  The run ends with a verification of the whole
// store.
func (im *Importer) Run(ctx context.Context, records []Record) (Result, error) {
	var res Result
	if im.opts.Overflow.Number > 0 {
		_, created, err := im.engine.EnsureTable(ctx, model.Table{
			Number:   im.opts.Overflow.Number,
			Name:     im.opts.Overflow.Name,
			Capacity: im.opts.Overflow.Capacity,
		})
		if err != nil {
			return res, fmt.Errorf("ensure overflow table %d: %w", im.opts.Overflow.Number, err)
		}
		if created {
			im.log.Info("overflow table created", "table", im.opts.Overflow.Number, "capacity", im.opts.Overflow.Capacity)
		}
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		item := im.one(ctx, rec)
		switch item.Action {
		case ActionAssigned:
			res.Assigned++
		case ActionAlreadyAssigned:
			res.Unchanged++
		case ActionMoved:
			res.Moved++
		case ActionSeatedElsewhere:
			res.Elsewhere++
		case ActionFailed:
			res.Failed++
			im.log.Warn("import line failed", "line", rec.Line, "guest", rec.FirstName+" "+rec.LastName, "table", rec.TableNumber, "error", item.Error)
		}
		if item.Created {
			res.Created++
		}
		res.Items = append(res.Items, item)
	}

	rep, err := im.engine.Views.Verify(ctx)
	res.Verification = &rep
	if err != nil {
		res.VerifyError = err.Error()
		if !errors.Is(err, seating.ErrInconsistentState) {
			return res, fmt.Errorf("verify after import: %w", err)
		}
	}
	return res, nil
}

func (im *Importer) one(ctx context.Context, rec Record) ItemResult {
	item := ItemResult{Line: rec.Line, FirstName: rec.FirstName, LastName: rec.LastName, TableNumber: rec.TableNumber}
	fail := func(err error) ItemResult {
		item.Action, item.Error = ActionFailed, err.Error()
		return item
	}

	guest, created, err := im.guestFor(ctx, rec)
	if err != nil {
		return fail(err)
	}
	item.GuestID, item.Created = guest.ID, created

	alloc, err := im.engine.Allocator.Assign(ctx, guest.ID, rec.TableNumber)
	if err != nil {
		return fail(err)
	}
	item.SeatNumber = alloc.Assignment.SeatNumber
	switch {
	case alloc.Outcome == seating.OutcomeAssigned:
		item.Action = ActionAssigned
	case alloc.Assignment.TableNumber == rec.TableNumber:
		item.Action = ActionAlreadyAssigned
	case !im.opts.Move:
		item.Action = ActionSeatedElsewhere
		item.TableNumber = alloc.Assignment.TableNumber
	default:
		moved, err := im.engine.Allocator.Reassign(ctx, guest.ID, rec.TableNumber)
		if err != nil {
			return fail(err)
		}
		item.Action, item.SeatNumber = ActionMoved, moved.Assignment.SeatNumber
	}
	return item
}

// guestFor finds the guest a record names or creates it.  Only an exact or
// near-exact (case and accent insensitive) full-name match is reused; a
// fuzzy first-name hit denotes somebody else.
func (im *Importer) guestFor(ctx context.Context, rec Record) (model.Guest, bool, error) {
	res, err := im.engine.Directory.Resolve(ctx, rec.FirstName, rec.LastName)
	if err != nil && !errors.Is(err, seating.ErrNotFound) {
		return model.Guest{}, false, err
	}
	want := seating.Fold(rec.FirstName + " " + rec.LastName)
	for _, c := range res.Candidates {
		if c.Match == seating.MatchExact || seating.Fold(c.Guest.FullName()) == want {
			if res.Ambiguous() {
				im.log.Warn("several guests match import line, using first",
					"line", rec.Line, "guest_id", c.Guest.ID, "candidates", len(res.Candidates))
			}
			return c.Guest, false, nil
		}
	}
	g, err := im.engine.Directory.CreateGuest(ctx, model.Guest{FirstName: rec.FirstName, LastName: rec.LastName})
	if err != nil {
		return model.Guest{}, false, err
	}
	return g, true, nil
}
