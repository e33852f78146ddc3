// Package importer loads a seating plan exported from a spreadsheet and
// drives the seating engine across every line of it.
package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Record is one guest line of a seating plan.
type Record struct {
	Line        int    `json:"line"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	TableNumber int    `json:"table_number"`
	Overflow    bool   `json:"overflow,omitempty"`
}

// Skip is a line that could not be turned into a Record.
type Skip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Raw    string `json:"raw"`
}

// ParseOptions configures the overflow designator.
type ParseOptions struct {
	// Sentinel marks a line as belonging to the overflow table, e.g.
	// "TABLE ENFANT".  Matching ignores case.
	Sentinel string
	// OverflowTable is the table number sentinel lines are assigned to.
	OverflowTable int
}

// Parsed is the outcome of Parse.
type Parsed struct {
	Records []Record `json:"records"`
	Skipped []Skip   `json:"skipped"`
}

// Parse reads comma separated lines of the form
//
//	LAST,FIRST,...,TABLE
//
// The table designator is the last purely numeric field; a line mentioning
// the sentinel anywhere goes to the overflow table instead.  Lines without
// both names or without a designator (headers, blank spreadsheet rows) are
// skipped and reported.
func Parse(r io.Reader, opts ParseOptions) (Parsed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	sentinel := strings.ToUpper(strings.TrimSpace(opts.Sentinel))

	var out Parsed
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			out.Skipped = append(out.Skipped, Skip{Line: perr.StartLine, Reason: perr.Err.Error()})
			continue
		}
		if err != nil {
			return out, err
		}
		line, _ := cr.FieldPos(0)
		raw := strings.Join(fields, ",")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if len(fields) < 2 {
			out.Skipped = append(out.Skipped, Skip{Line: line, Reason: "fewer than two fields", Raw: raw})
			continue
		}
		rec := Record{
			Line:      line,
			LastName:  strings.TrimSpace(fields[0]),
			FirstName: strings.TrimSpace(fields[1]),
		}
		if rec.LastName == "" || rec.FirstName == "" {
			out.Skipped = append(out.Skipped, Skip{Line: line, Reason: "missing name", Raw: raw})
			continue
		}
		switch {
		case sentinel != "" && strings.Contains(strings.ToUpper(raw), sentinel):
			rec.TableNumber, rec.Overflow = opts.OverflowTable, true
		default:
			rec.TableNumber = designator(fields)
		}
		if rec.TableNumber <= 0 {
			out.Skipped = append(out.Skipped, Skip{Line: line, Reason: "no table designator", Raw: raw})
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// designator returns the last all-digit field, 0 if there is none.
func designator(fields []string) int {
	for i := len(fields) - 1; i >= 0; i-- {
		f := strings.TrimSpace(fields[i])
		if f == "" || strings.TrimLeft(f, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		return n
	}
	return 0
}
