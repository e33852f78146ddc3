package cli

import (
	"fmt"
	"strings"

	"github.com/iliyamo/guest-seating/internal/importer"
	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repair"
	"github.com/iliyamo/guest-seating/internal/seating"
)

// Text renderings of command payloads.  JSON output uses the payloads as is.

type candidateList []seating.Candidate

func (l candidateList) Text() string {
	var b strings.Builder
	for i, c := range l {
		fmt.Fprintf(&b, "  %d. %s [%s] %s score=%d\n", i+1, c.Guest.FullName(), c.Guest.ID, c.Match, c.Score)
	}
	return b.String()
}

type issueList []seating.Issue

func (l issueList) Text() string {
	var b strings.Builder
	for _, is := range l {
		fmt.Fprintf(&b, "  - %s\n", is)
	}
	return b.String()
}

type allocationView seating.Allocation

func (a allocationView) Text() string {
	s := a.Assignment
	switch a.Outcome {
	case seating.OutcomeMoved:
		return fmt.Sprintf("moved %s from table %d to table %d seat %d (token %s)\n", s.GuestID, a.FromTable, s.TableNumber, s.SeatNumber, s.Token)
	case seating.OutcomeAlreadyAssigned:
		return fmt.Sprintf("%s already seated at table %d seat %d\n", s.GuestID, s.TableNumber, s.SeatNumber)
	}
	return fmt.Sprintf("seated %s at table %d seat %d (token %s)\n", s.GuestID, s.TableNumber, s.SeatNumber, s.Token)
}

type unassignView model.SeatAssignment

func (u unassignView) Text() string {
	return fmt.Sprintf("removed %s from table %d seat %d\n", u.GuestID, u.TableNumber, u.SeatNumber)
}

type compactView seating.CompactReport

func (c compactView) Text() string {
	return fmt.Sprintf("table %d: %d seat(s) renumbered, %d seated\n", c.TableNumber, c.Renumbered, len(c.Seats))
}

type mergeView seating.MergeReport

func (m mergeView) Text() string {
	var b strings.Builder
	verb := "removed"
	if m.DryRun {
		verb = "would remove"
	}
	fmt.Fprintf(&b, "%q: kept %s [%s]", m.Pattern, m.Kept.FullName(), m.Kept.ID)
	if m.KeptSeat != nil {
		fmt.Fprintf(&b, " at table %d seat %d", m.KeptSeat.TableNumber, m.KeptSeat.SeatNumber)
	}
	b.WriteString("\n")
	for _, g := range m.Removed {
		fmt.Fprintf(&b, "  %s %s [%s]\n", verb, g.FullName(), g.ID)
	}
	return b.String()
}

type groupList []seating.DuplicateGroup

func (l groupList) Text() string {
	if len(l) == 0 {
		return "no duplicates\n"
	}
	var b strings.Builder
	for _, g := range l {
		fmt.Fprintf(&b, "%s (%d)\n", g.Key, len(g.Guests))
		for _, guest := range g.Guests {
			fmt.Fprintf(&b, "  %s [%s]\n", guest.FullName(), guest.ID)
		}
	}
	return b.String()
}

type guestList []model.Guest

func (l guestList) Text() string {
	var b strings.Builder
	for _, g := range l {
		fmt.Fprintf(&b, "%s [%s]\n", g.FullName(), g.ID)
	}
	return b.String()
}

type tableStatusList []model.TableStatus

func (l tableStatusList) Text() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(tableStatusView(t).Text())
	}
	return b.String()
}

type tableStatusView model.TableStatus

func (t tableStatusView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table %d %s: %d/%d occupied, %d free\n", t.TableNumber, t.TableName, t.OccupiedSeats, t.Capacity, t.AvailableSeats)
	for _, g := range t.SeatedGuests {
		mark := ""
		if g.CheckedIn {
			mark = " (checked in)"
		}
		fmt.Fprintf(&b, "  %2d. %s%s\n", g.SeatNumber, g.GuestName, mark)
	}
	return b.String()
}

type guestStatusView model.GuestStatus

func (g guestStatusView) Text() string {
	if g.TableNumber == nil || g.SeatNumber == nil {
		return fmt.Sprintf("%s %s: %s\n", g.FirstName, g.LastName, g.Status)
	}
	return fmt.Sprintf("%s %s: %s at table %d (%s) seat %d\n", g.FirstName, g.LastName, g.Status, *g.TableNumber, g.TableName, *g.SeatNumber)
}

type summaryView seating.Summary

func (s summaryView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "guests:     %d (%d seated, %d unseated, %d checked in)\n", s.TotalGuests, s.AssignedGuests, s.UnassignedGuests, s.CheckedInGuests)
	fmt.Fprintf(&b, "tables:     %d\n", s.Tables)
	fmt.Fprintf(&b, "seats:      %d/%d occupied, %d free\n", s.OccupiedSeats, s.TotalCapacity, s.AvailableSeats)
	if s.Overflow != nil {
		fmt.Fprintf(&b, "overflow:   table %d %d/%d occupied\n", s.Overflow.TableNumber, s.Overflow.OccupiedSeats, s.Overflow.Capacity)
	}
	return b.String()
}

type reportView seating.Report

func (r reportView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d tables, %d guests, %d assignments: ", r.Tables, r.Guests, r.Assignments)
	if len(r.Issues) == 0 {
		b.WriteString("ok\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d issue(s)\n", len(r.Issues))
	b.WriteString(issueList(r.Issues).Text())
	return b.String()
}

type importView importer.Result

func (r importView) Text() string {
	var b strings.Builder
	for _, it := range r.Items {
		switch {
		case it.Error != "":
			fmt.Fprintf(&b, "line %d %s %s: FAILED %s\n", it.Line, it.FirstName, it.LastName, it.Error)
		case it.Action != importer.ActionAlreadyAssigned:
			fmt.Fprintf(&b, "line %d %s %s: %s table %d seat %d\n", it.Line, it.FirstName, it.LastName, it.Action, it.TableNumber, it.SeatNumber)
		}
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "line %d skipped: %s\n", s.Line, s.Reason)
	}
	fmt.Fprintf(&b, "created %d, assigned %d, unchanged %d, moved %d, seated elsewhere %d, failed %d, skipped %d\n",
		r.Created, r.Assigned, r.Unchanged, r.Moved, r.Elsewhere, r.Failed, len(r.Skipped))
	if r.Verification != nil {
		b.WriteString(reportView(*r.Verification).Text())
	}
	return b.String()
}

type repairView []repair.Outcome

func (l repairView) Text() string {
	var b strings.Builder
	for _, o := range l {
		if o.Failed() {
			fmt.Fprintf(&b, "%s %s: FAILED %s\n", o.Kind, o.Subject, o.Error)
			continue
		}
		fmt.Fprintf(&b, "%s %s: %s\n", o.Kind, o.Subject, o.Result)
	}
	return b.String()
}

type checkInView seating.CheckInResult

func (c checkInView) Text() string {
	if c.AlreadyCheckedIn {
		return fmt.Sprintf("%s already checked in: table %d seat %d\n", c.Guest.FullName(), c.Seat.TableNumber, c.Seat.SeatNumber)
	}
	return fmt.Sprintf("welcome %s: table %d %s seat %d\n", c.Guest.FullName(), c.Seat.TableNumber, c.TableName, c.Seat.SeatNumber)
}
