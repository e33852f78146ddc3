package seating

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/guest-seating/internal/model"
)

// MergeOptions steers a duplicate merge.
type MergeOptions struct {
	// KeepID names the record to keep.  When empty the single seated
	// candidate is kept.
	KeepID string `json:"keep_id,omitempty" yaml:"keep_id"`
	// FirstNamePattern narrows the candidates to first names containing it,
	// ignoring case and accents.
	FirstNamePattern string `json:"first_name,omitempty" yaml:"first_name"`
	// DryRun computes the plan without deleting anything.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run"`
}

// MergeReport lists what a merge kept and removed.
type MergeReport struct {
	Pattern      string                 `json:"pattern"`
	Kept         model.Guest            `json:"kept"`
	KeptSeat     *model.SeatAssignment  `json:"kept_seat,omitempty"`
	Removed      []model.Guest          `json:"removed"`
	RemovedSeats []model.SeatAssignment `json:"removed_seats,omitempty"`
	DryRun       bool                   `json:"dry_run,omitempty"`
}

// DuplicateResolver collapses guest records that denote the same person.
// It keeps one record and deletes the others; fields are never merged.
type DuplicateResolver struct {
	*deps
	dir *Directory
}

// Resolve merges the guests whose last name contains lastNamePattern.
//
// The kept record is opts.KeepID or, by default, the only seated candidate.
// Several seated candidates yield an *InconsistencyError and no seated
// candidate without KeepID yields an *AmbiguousError.  A discard whose seat
// is not at the kept record's table would lose that seat, so the whole merge
// is refused with an *InconsistencyError before anything is deleted.  Each
// discard loses its assignment first and its guest record second.
func (r *DuplicateResolver) Resolve(ctx context.Context, lastNamePattern string, opts MergeOptions) (MergeReport, error) {
	rep := MergeReport{Pattern: lastNamePattern, DryRun: opts.DryRun}
	found, err := r.dir.FindDuplicatesOf(ctx, lastNamePattern)
	if err != nil {
		return rep, err
	}
	candidates := found[:0:0]
	fp := Fold(opts.FirstNamePattern)
	for _, g := range found {
		if fp == "" || strings.Contains(Fold(g.FirstName), fp) {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return rep, fmt.Errorf("%w: no guest matches last name %q", ErrNotFound, lastNamePattern)
	}

	seats := make(map[string]*model.SeatAssignment, len(candidates))
	for _, g := range candidates {
		cur, err := r.seatOf(ctx, g.ID)
		if err != nil {
			return rep, err
		}
		seats[g.ID] = cur
	}

	keep, err := r.pickKeep(lastNamePattern, candidates, seats, opts.KeepID)
	if err != nil {
		return rep, err
	}
	rep.Kept, rep.KeptSeat = keep, seats[keep.ID]

	var issues []Issue
	for _, g := range candidates {
		if g.ID == keep.ID {
			continue
		}
		rep.Removed = append(rep.Removed, g)
		s := seats[g.ID]
		if s == nil {
			continue
		}
		rep.RemovedSeats = append(rep.RemovedSeats, *s)
		if rep.KeptSeat == nil || rep.KeptSeat.TableNumber != s.TableNumber {
			issues = append(issues, Issue{
				Kind:        IssueSeatLoss,
				TableNumber: s.TableNumber,
				GuestID:     g.ID,
				Detail: fmt.Sprintf("%s is seated at table %d seat %d but the kept record %s is %s",
					g.FullName(), s.TableNumber, s.SeatNumber, keep.ID, describeSeat(rep.KeptSeat)),
			})
		}
	}
	if len(issues) > 0 {
		return rep, &InconsistencyError{Issues: issues}
	}
	if opts.DryRun || len(rep.Removed) == 0 {
		return rep, nil
	}

	for _, g := range rep.Removed {
		if _, err := r.seats.DeleteByGuest(ctx, g.ID); err != nil {
			return rep, fmt.Errorf("remove seat of duplicate %s: %w", g.ID, err)
		}
		if err := r.guests.Delete(ctx, g.ID); err != nil {
			return rep, fmt.Errorf("remove duplicate %s: %w", g.ID, err)
		}
		r.log.Info("duplicate guest removed", "guest_id", g.ID, "guest", g.FullName(), "kept", keep.ID)
		r.emit(ctx, Event{Kind: EventDuplicateMerge, GuestID: g.ID})
	}
	r.metrics.removed(len(rep.Removed))
	return rep, nil
}

func (r *DuplicateResolver) pickKeep(pattern string, candidates []model.Guest, seats map[string]*model.SeatAssignment, keepID string) (model.Guest, error) {
	if keepID != "" {
		for _, g := range candidates {
			if g.ID == keepID {
				return g, nil
			}
		}
		return model.Guest{}, fmt.Errorf("%w: guest %s is not among the candidates for %q", ErrNotFound, keepID, pattern)
	}
	var seated []model.Guest
	for _, g := range candidates {
		if seats[g.ID] != nil {
			seated = append(seated, g)
		}
	}
	switch len(seated) {
	case 1:
		return seated[0], nil
	case 0:
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		amb := &AmbiguousError{Query: pattern}
		for _, g := range candidates {
			amb.Candidates = append(amb.Candidates, Candidate{Guest: g, Match: MatchFuzzy})
		}
		return model.Guest{}, amb
	default:
		issues := make([]Issue, 0, len(seated))
		for _, g := range seated {
			s := seats[g.ID]
			issues = append(issues, Issue{
				Kind:        IssueSeatedDuplicates,
				TableNumber: s.TableNumber,
				GuestID:     g.ID,
				Detail:      fmt.Sprintf("%s is seated at table %d seat %d", g.FullName(), s.TableNumber, s.SeatNumber),
			})
		}
		return model.Guest{}, &InconsistencyError{Issues: issues}
	}
}

func describeSeat(s *model.SeatAssignment) string {
	if s == nil {
		return "unseated"
	}
	return fmt.Sprintf("at table %d seat %d", s.TableNumber, s.SeatNumber)
}
