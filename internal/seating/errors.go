package seating

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/guest-seating/internal/repository"
)

var (
	// ErrNotFound means a lookup matched nothing.  Callers decide whether to
	// skip or report.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous means a lookup matched several guests where exactly one
	// was required.
	ErrAmbiguous = errors.New("ambiguous guest reference")
	// ErrCapacityExceeded means an allocation would overfill a table.
	ErrCapacityExceeded = errors.New("table capacity exceeded")
	// ErrConflict means a concurrent writer won a uniqueness race twice.
	ErrConflict = repository.ErrConflict
	// ErrInconsistentState means the base tables disagree with an invariant.
	// It is always surfaced and never repaired automatically.
	ErrInconsistentState = errors.New("inconsistent seating state")
)

// AmbiguousError carries the candidate set of an ambiguous resolution.
type AmbiguousError struct {
	Query      string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, fmt.Sprintf("%s (%s)", c.Guest.FullName(), c.Guest.ID))
	}
	return fmt.Sprintf("%s %q: %d candidates: %s", ErrAmbiguous, e.Query, len(e.Candidates), strings.Join(names, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// CapacityError reports the table that rejected an allocation.
type CapacityError struct {
	TableNumber int
	Capacity    int
	Occupied    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: table %d holds %d of %d seats", ErrCapacityExceeded, e.TableNumber, e.Occupied, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// Issue kinds reported by Verify and by the duplicate resolver.
const (
	IssueCapacityMismatch = "capacity_mismatch"
	IssueOverCapacity     = "over_capacity"
	IssueOrphanTable      = "orphan_table"
	IssueOrphanGuest      = "orphan_guest"
	IssueDuplicateSeat    = "duplicate_seat"
	IssueMultipleSeats    = "multiple_seats"
	IssueSeatedDuplicates = "seated_duplicates"
	IssueSeatLoss         = "seat_loss"
)

// Issue is one invariant violation.
type Issue struct {
	Kind        string `json:"kind"`
	TableNumber int    `json:"table_number,omitempty"`
	GuestID     string `json:"guest_id,omitempty"`
	Detail      string `json:"detail"`
}

func (i Issue) String() string { return i.Kind + ": " + i.Detail }

// InconsistencyError lists every violation found.
type InconsistencyError struct {
	Issues []Issue
}

func (e *InconsistencyError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.String())
	}
	return fmt.Sprintf("%s: %s", ErrInconsistentState, strings.Join(parts, "; "))
}

func (e *InconsistencyError) Unwrap() error { return ErrInconsistentState }
