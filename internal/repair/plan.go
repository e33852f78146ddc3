// Package repair applies hand-written fix lists to the seating store.  A fix
// list is plain data (a YAML plan) executed through the seating engine, so
// one-off corrections never need code of their own.
package repair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/guest-seating/internal/seating"
)

// Plan is a list of duplicate merges followed by seat placements.
type Plan struct {
	Merges      []Merge      `yaml:"merges"`
	Assignments []Assignment `yaml:"assignments"`
}

// Merge collapses the guests whose last name contains LastName.
type Merge struct {
	LastName string `yaml:"last_name"`

	seating.MergeOptions `yaml:",inline"`
}

// Assignment places a guest named by first and last name at Table.  With
// Move a guest seated elsewhere is moved; otherwise it is left in place.
type Assignment struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Table     int    `yaml:"table"`
	Move      bool   `yaml:"move"`
}

// Load reads a plan file.
func Load(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a plan and validates every entry.  Unknown keys are
// rejected so a misspelt field cannot silently change the meaning of a fix.
func Decode(r io.Reader) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return Plan{}, fmt.Errorf("decode repair plan: %w", err)
	}
	return p, p.Validate()
}

// Validate checks that every entry is complete.
func (p Plan) Validate() error {
	var errs []error
	for i, m := range p.Merges {
		if strings.TrimSpace(m.LastName) == "" {
			errs = append(errs, fmt.Errorf("merges[%d]: last_name is required", i))
		}
	}
	for i, a := range p.Assignments {
		if strings.TrimSpace(a.FirstName) == "" && strings.TrimSpace(a.LastName) == "" {
			errs = append(errs, fmt.Errorf("assignments[%d]: a name is required", i))
		}
		if a.Table <= 0 {
			errs = append(errs, fmt.Errorf("assignments[%d]: table must be positive", i))
		}
	}
	return errors.Join(errs...)
}

// Outcome is the result of one plan entry.
type Outcome struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	GuestID string `json:"guest_id,omitempty"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the entry failed.
func (o Outcome) Failed() bool { return o.Error != "" }

// Apply executes the plan: merges first so placements see the surviving
// records.  Every entry is attempted; failures are recorded, not returned.
func Apply(ctx context.Context, engine *seating.Engine, p Plan, log *slog.Logger) []Outcome {
	if log == nil {
		log = slog.Default()
	}
	out := make([]Outcome, 0, len(p.Merges)+len(p.Assignments))
	for _, m := range p.Merges {
		o := Outcome{Kind: "merge", Subject: m.LastName}
		rep, err := engine.Duplicates.Resolve(ctx, m.LastName, m.MergeOptions)
		if err != nil {
			o.Error = err.Error()
		} else {
			o.GuestID = rep.Kept.ID
			o.Result = fmt.Sprintf("kept %s, removed %d", rep.Kept.FullName(), len(rep.Removed))
			if rep.DryRun {
				o.Result += " (dry run)"
			}
		}
		out = append(out, o)
	}
	for _, a := range p.Assignments {
		o := Outcome{Kind: "assign", Subject: strings.TrimSpace(a.FirstName + " " + a.LastName)}
		g, _, err := engine.Directory.ResolveForAssignment(ctx, a.FirstName, a.LastName)
		if err != nil {
			o.Error = err.Error()
			out = append(out, o)
			continue
		}
		o.GuestID = g.ID
		var alloc seating.Allocation
		if a.Move {
			alloc, err = engine.Allocator.Reassign(ctx, g.ID, a.Table)
		} else {
			alloc, err = engine.Allocator.Assign(ctx, g.ID, a.Table)
		}
		if err != nil {
			o.Error = err.Error()
		} else {
			o.Result = fmt.Sprintf("%s table %d seat %d", alloc.Outcome, alloc.Assignment.TableNumber, alloc.Assignment.SeatNumber)
		}
		out = append(out, o)
	}
	for _, o := range out {
		if o.Failed() {
			log.Warn("repair entry failed", "kind", o.Kind, "subject", o.Subject, "error", o.Error)
		}
	}
	return out
}
