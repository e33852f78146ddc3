package seating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
)

// Match tells how a candidate was found.
type Match string

const (
	MatchExact Match = "exact"
	MatchFuzzy Match = "fuzzy"
)

// Candidate is one guest a name reference may denote.  Higher scores rank
// first; exact matches always score highest.
type Candidate struct {
	Guest model.Guest `json:"guest"`
	Match Match       `json:"match"`
	Score int         `json:"score"`
}

// Resolution is the ranked candidate set for a name reference.
type Resolution struct {
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Candidates []Candidate `json:"candidates"`
}

// Fallback reports whether the candidates came from fuzzy matching.
func (r Resolution) Fallback() bool {
	return len(r.Candidates) > 0 && r.Candidates[0].Match == MatchFuzzy
}

// Ambiguous reports whether more than one guest matched.
func (r Resolution) Ambiguous() bool { return len(r.Candidates) > 1 }

func (r Resolution) query() string { return strings.TrimSpace(r.FirstName + " " + r.LastName) }

const exactScore = 100

// Directory resolves name references to guest records.
type Directory struct {
	*deps
}

// Resolve returns every guest the name may denote.  An exact, case-sensitive
// match on both names wins outright; otherwise the first name is matched
// partially, ignoring case and accents, and candidates are ranked by how
// well both names agree.  It returns ErrNotFound when nothing matched and
// never fails on ambiguity.
func (d *Directory) Resolve(ctx context.Context, first, last string) (Resolution, error) {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	res := Resolution{FirstName: first, LastName: last}
	if first == "" && last == "" {
		return res, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	exact, err := d.guests.FindByName(ctx, first, last)
	if err != nil {
		return res, err
	}
	for _, g := range exact {
		res.Candidates = append(res.Candidates, Candidate{Guest: g, Match: MatchExact, Score: exactScore})
	}
	if len(res.Candidates) > 0 {
		return res, nil
	}

	all, err := d.guests.List(ctx)
	if err != nil {
		return res, err
	}
	ff, fl := Fold(first), Fold(last)
	for _, g := range all {
		if score := fuzzyScore(ff, fl, g); score > 0 {
			res.Candidates = append(res.Candidates, Candidate{Guest: g, Match: MatchFuzzy, Score: score})
		}
	}
	if len(res.Candidates) == 0 {
		return res, fmt.Errorf("%w: no guest matches %q", ErrNotFound, res.query())
	}
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Score > res.Candidates[j].Score
	})
	return res, nil
}

// fuzzyScore ranks a guest against folded names.  The first name must match
// partially for the guest to qualify at all; the last name only ranks.
func fuzzyScore(first, last string, g model.Guest) int {
	gf, gl := Fold(g.FirstName), Fold(g.LastName)
	score := 0
	switch {
	case first == "":
		if last == "" || !strings.Contains(gl, last) {
			return 0
		}
		score = 10
	case gf == first:
		score = 30
	case strings.HasPrefix(gf, first):
		score = 20
	case strings.Contains(gf, first):
		score = 10
	case gf != "" && strings.Contains(first, gf):
		score = 5
	default:
		return 0
	}
	switch {
	case last == "":
	case gl == last:
		score += 40
	case strings.Contains(gl, last), gl != "" && strings.Contains(last, gl):
		score += 20
	}
	return score
}

// ResolveUnique resolves a reference for destructive callers.  More than one
// candidate is an *AmbiguousError carrying the full set.
func (d *Directory) ResolveUnique(ctx context.Context, first, last string) (model.Guest, error) {
	res, err := d.Resolve(ctx, first, last)
	if err != nil {
		return model.Guest{}, err
	}
	if res.Ambiguous() {
		return model.Guest{}, &AmbiguousError{Query: res.query(), Candidates: res.Candidates}
	}
	return res.Candidates[0].Guest, nil
}

// ResolveForAssignment resolves a reference for additive callers by taking
// the best candidate.  Fuzzy fallbacks and ambiguous picks are logged so the
// choice can be audited.
func (d *Directory) ResolveForAssignment(ctx context.Context, first, last string) (model.Guest, Resolution, error) {
	res, err := d.Resolve(ctx, first, last)
	if err != nil {
		return model.Guest{}, res, err
	}
	pick := res.Candidates[0].Guest
	if res.Fallback() || res.Ambiguous() {
		d.metrics.fallback()
		d.log.Warn("guest resolved by fallback",
			"query", res.query(),
			"guest_id", pick.ID,
			"guest", pick.FullName(),
			"match", res.Candidates[0].Match,
			"candidates", len(res.Candidates))
	}
	return pick, res, nil
}

// FindDuplicatesOf returns guests whose last name contains pattern,
// ignoring case, ordered by last name, first name and id.
func (d *Directory) FindDuplicatesOf(ctx context.Context, lastNamePattern string) ([]model.Guest, error) {
	lastNamePattern = strings.TrimSpace(lastNamePattern)
	if lastNamePattern == "" {
		return nil, errors.New("last name pattern is required")
	}
	return d.guests.FindLastNameLike(ctx, lastNamePattern)
}

// DuplicateGroup is a set of guests whose folded full names coincide.
type DuplicateGroup struct {
	Key    string        `json:"key"`
	Guests []model.Guest `json:"guests"`
}

// DetectDuplicateGroups groups every guest by folded full name and returns
// the groups holding more than one record, ordered by key.
func (d *Directory) DetectDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	all, err := d.guests.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := map[string][]model.Guest{}
	for _, g := range all {
		k := Fold(g.FullName())
		byKey[k] = append(byKey[k], g)
	}
	var out []DuplicateGroup
	for k, gs := range byKey {
		if len(gs) > 1 {
			out = append(out, DuplicateGroup{Key: k, Guests: gs})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// CreateGuest stores a new guest.  Names are required.
func (d *Directory) CreateGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	g.FirstName, g.LastName = strings.TrimSpace(g.FirstName), strings.TrimSpace(g.LastName)
	if g.FirstName == "" || g.LastName == "" {
		return model.Guest{}, errors.New("first and last name are required")
	}
	g.CheckedIn, g.CheckedInAt, g.CheckInToken = false, nil, nil
	if err := d.guests.Create(ctx, &g); err != nil {
		return model.Guest{}, err
	}
	d.emit(ctx, Event{Kind: EventGuestCreated, GuestID: g.ID})
	return g, nil
}

// Guest returns one guest by id.
func (d *Directory) Guest(ctx context.Context, id string) (model.Guest, error) {
	g, err := d.guestByID(ctx, id)
	if err != nil {
		return model.Guest{}, err
	}
	return *g, nil
}

// Guests lists every guest.
func (d *Directory) Guests(ctx context.Context) ([]model.Guest, error) {
	return d.guests.List(ctx)
}

// DeleteGuest removes a guest and its assignment.
func (d *Directory) DeleteGuest(ctx context.Context, id string) error {
	seat, err := d.seatOf(ctx, id)
	if err != nil {
		return err
	}
	err = d.guests.Delete(ctx, id)
	if errors.Is(err, repository.ErrGuestNotFound) {
		return fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	e := Event{Kind: EventGuestDeleted, GuestID: id}
	if seat != nil {
		e.TableNumber, e.SeatNumber = seat.TableNumber, seat.SeatNumber
	}
	d.emit(ctx, e)
	return nil
}
