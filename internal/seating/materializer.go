package seating

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/guest-seating/internal/model"
)

// Materializer projects guests, tables and assignments into the table and
// guest read-models.  It only reads.
//
// Assignments are joined to tables on the guest-visible table number and to
// guests on guest id.  The internal table id never takes part in a join.
type Materializer struct {
	*deps
}

// Snapshot holds both read-models computed from one read of the base tables.
type Snapshot struct {
	Tables []model.TableStatus `json:"tables"`
	Guests []model.GuestStatus `json:"guests"`
}

type baseTables struct {
	tables []model.Table
	guests []model.Guest
	seats  []model.SeatAssignment

	tableByNumber map[int]model.Table
	guestByID     map[string]model.Guest
	seatsByTable  map[int][]model.SeatAssignment
	seatsByGuest  map[string][]model.SeatAssignment
}

func (m *Materializer) load(ctx context.Context) (*baseTables, error) {
	tables, err := m.tables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	guests, err := m.guests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}
	seats, err := m.seats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	b := &baseTables{
		tables:        tables,
		guests:        guests,
		seats:         seats,
		tableByNumber: make(map[int]model.Table, len(tables)),
		guestByID:     make(map[string]model.Guest, len(guests)),
		seatsByTable:  map[int][]model.SeatAssignment{},
		seatsByGuest:  map[string][]model.SeatAssignment{},
	}
	for _, t := range tables {
		b.tableByNumber[t.Number] = t
	}
	for _, g := range guests {
		b.guestByID[g.ID] = g
	}
	// seats arrive ordered by table then seat
	for _, s := range seats {
		b.seatsByTable[s.TableNumber] = append(b.seatsByTable[s.TableNumber], s)
		b.seatsByGuest[s.GuestID] = append(b.seatsByGuest[s.GuestID], s)
	}
	return b, nil
}

// Materialize recomputes both read-models.  Tables are ordered by number,
// seated guests by seat and guests by last name, first name and id.
func (m *Materializer) Materialize(ctx context.Context) (Snapshot, error) {
	b, err := m.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Tables: make([]model.TableStatus, 0, len(b.tables)),
		Guests: make([]model.GuestStatus, 0, len(b.guests)),
	}
	for _, t := range b.tables {
		snap.Tables = append(snap.Tables, tableStatus(t, b.seatsByTable[t.Number], b.guestByID))
	}
	for _, g := range b.guests {
		snap.Guests = append(snap.Guests, guestStatus(g, b.seatsByGuest[g.ID], b.tableByNumber))
	}
	m.metrics.occupancy(snap.Tables)
	return snap, nil
}

// TableStatus materializes a single table.
func (m *Materializer) TableStatus(ctx context.Context, number int) (model.TableStatus, error) {
	t, err := m.tableByNumber(ctx, number)
	if err != nil {
		return model.TableStatus{}, err
	}
	seats, err := m.seats.ListByTable(ctx, number)
	if err != nil {
		return model.TableStatus{}, err
	}
	guests := make(map[string]model.Guest, len(seats))
	for _, s := range seats {
		g, err := m.guests.GetByID(ctx, s.GuestID)
		if err != nil {
			continue
		}
		guests[g.ID] = *g
	}
	return tableStatus(*t, seats, guests), nil
}

// GuestStatus materializes a single guest.
func (m *Materializer) GuestStatus(ctx context.Context, guestID string) (model.GuestStatus, error) {
	g, err := m.guestByID(ctx, guestID)
	if err != nil {
		return model.GuestStatus{}, err
	}
	seat, err := m.seatOf(ctx, guestID)
	if err != nil {
		return model.GuestStatus{}, err
	}
	tables := map[int]model.Table{}
	var seats []model.SeatAssignment
	if seat != nil {
		seats = append(seats, *seat)
		if t, err := m.tables.GetByNumber(ctx, seat.TableNumber); err == nil {
			tables[t.Number] = *t
		}
	}
	return guestStatus(*g, seats, tables), nil
}

func tableStatus(t model.Table, seats []model.SeatAssignment, guests map[string]model.Guest) model.TableStatus {
	ts := model.TableStatus{
		TableNumber:  t.Number,
		TableName:    t.Name,
		Capacity:     t.Capacity,
		IsVIP:        t.IsVIP,
		ColorCode:    t.ColorCode,
		ColorName:    t.ColorName,
		SeatedGuests: make([]model.SeatedGuest, 0, len(seats)),
	}
	sorted := append([]model.SeatAssignment(nil), seats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SeatNumber < sorted[j].SeatNumber })
	for _, s := range sorted {
		g := guests[s.GuestID]
		ts.SeatedGuests = append(ts.SeatedGuests, model.SeatedGuest{
			GuestID:    s.GuestID,
			SeatNumber: s.SeatNumber,
			GuestName:  g.FullName(),
			CheckedIn:  s.CheckedIn || g.CheckedIn,
		})
	}
	ts.OccupiedSeats = len(sorted)
	ts.AvailableSeats = t.Capacity - ts.OccupiedSeats
	if ts.AvailableSeats < 0 {
		ts.AvailableSeats = 0
	}
	return ts
}

func guestStatus(g model.Guest, seats []model.SeatAssignment, tables map[int]model.Table) model.GuestStatus {
	gs := model.GuestStatus{
		GuestID:   g.ID,
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Status:    model.StatusUnassigned,
	}
	checkedIn := g.CheckedIn
	if len(seats) > 0 {
		s := seats[0]
		table, seat := s.TableNumber, s.SeatNumber
		gs.TableNumber, gs.SeatNumber = &table, &seat
		gs.TableName = tables[s.TableNumber].Name
		gs.CheckInToken = s.Token
		gs.Status = model.StatusAssigned
		checkedIn = checkedIn || s.CheckedIn
	}
	if checkedIn {
		gs.Status = model.StatusCheckedIn
	}
	return gs
}

// Report is the outcome of Verify.
type Report struct {
	Tables      int       `json:"tables"`
	Guests      int       `json:"guests"`
	Assignments int       `json:"assignments"`
	Issues      []Issue   `json:"issues"`
	CheckedAt   time.Time `json:"checked_at"`
}

// OK reports whether no issue was found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Verify checks the base tables against every seating invariant and returns
// an *InconsistencyError listing the violations, if any.  It never repairs.
func (m *Materializer) Verify(ctx context.Context) (Report, error) {
	b, err := m.load(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Tables:      len(b.tables),
		Guests:      len(b.guests),
		Assignments: len(b.seats),
		Issues:      []Issue{},
		CheckedAt:   m.now().UTC(),
	}
	add := func(i Issue) { rep.Issues = append(rep.Issues, i) }

	for _, t := range b.tables {
		ts := tableStatus(t, b.seatsByTable[t.Number], b.guestByID)
		if ts.OccupiedSeats > t.Capacity {
			add(Issue{Kind: IssueOverCapacity, TableNumber: t.Number,
				Detail: fmt.Sprintf("table %d seats %d guests for %d seats", t.Number, ts.OccupiedSeats, t.Capacity)})
		}
		if ts.OccupiedSeats+ts.AvailableSeats != t.Capacity {
			add(Issue{Kind: IssueCapacityMismatch, TableNumber: t.Number,
				Detail: fmt.Sprintf("table %d: occupied %d + available %d != capacity %d",
					t.Number, ts.OccupiedSeats, ts.AvailableSeats, t.Capacity)})
		}
		seen := map[int]string{}
		for _, s := range b.seatsByTable[t.Number] {
			if other, dup := seen[s.SeatNumber]; dup {
				add(Issue{Kind: IssueDuplicateSeat, TableNumber: t.Number, GuestID: s.GuestID,
					Detail: fmt.Sprintf("table %d seat %d held by %s and %s", t.Number, s.SeatNumber, other, s.GuestID)})
			}
			seen[s.SeatNumber] = s.GuestID
		}
	}
	for _, s := range b.seats {
		if _, ok := b.tableByNumber[s.TableNumber]; !ok {
			add(Issue{Kind: IssueOrphanTable, TableNumber: s.TableNumber, GuestID: s.GuestID,
				Detail: fmt.Sprintf("assignment %d refers to unknown table %d", s.ID, s.TableNumber)})
		}
		if _, ok := b.guestByID[s.GuestID]; !ok {
			add(Issue{Kind: IssueOrphanGuest, TableNumber: s.TableNumber, GuestID: s.GuestID,
				Detail: fmt.Sprintf("assignment %d refers to unknown guest %s", s.ID, s.GuestID)})
		}
	}
	guestIDs := make([]string, 0, len(b.seatsByGuest))
	for id := range b.seatsByGuest {
		guestIDs = append(guestIDs, id)
	}
	sort.Strings(guestIDs)
	for _, id := range guestIDs {
		if rows := b.seatsByGuest[id]; len(rows) > 1 {
			add(Issue{Kind: IssueMultipleSeats, GuestID: id,
				Detail: fmt.Sprintf("guest %s holds %d seats", id, len(rows))})
		}
	}

	m.metrics.verified(len(rep.Issues))
	if !rep.OK() {
		m.log.Warn("seating verification failed", "issues", len(rep.Issues))
		return rep, &InconsistencyError{Issues: rep.Issues}
	}
	return rep, nil
}

// Summary is the dashboard digest.  Seat totals exclude the overflow table,
// which is reported on its own.
type Summary struct {
	TotalGuests      int                `json:"total_guests"`
	AssignedGuests   int                `json:"assigned_guests"`
	UnassignedGuests int                `json:"unassigned_guests"`
	CheckedInGuests  int                `json:"checked_in_guests"`
	Tables           int                `json:"tables"`
	TotalCapacity    int                `json:"total_capacity"`
	OccupiedSeats    int                `json:"occupied_seats"`
	AvailableSeats   int                `json:"available_seats"`
	Overflow         *model.TableStatus `json:"overflow,omitempty"`
}

// Summary computes the dashboard digest from a fresh snapshot.
func (m *Materializer) Summary(ctx context.Context) (Summary, error) {
	snap, err := m.Materialize(ctx)
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	for _, g := range snap.Guests {
		s.TotalGuests++
		switch g.Status {
		case model.StatusUnassigned:
			s.UnassignedGuests++
		case model.StatusCheckedIn:
			s.CheckedInGuests++
		}
		if g.TableNumber != nil {
			s.AssignedGuests++
		}
	}
	for i, t := range snap.Tables {
		if m.overflow != 0 && t.TableNumber == m.overflow {
			s.Overflow = &snap.Tables[i]
			continue
		}
		s.Tables++
		s.TotalCapacity += t.Capacity
		s.OccupiedSeats += t.OccupiedSeats
		s.AvailableSeats += t.AvailableSeats
	}
	return s, nil
}
