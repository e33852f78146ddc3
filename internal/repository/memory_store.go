package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.  It enforces the same uniqueness rules
// as the SQL schema so allocator races behave identically in tests and in
// the CLI's --memory mode.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

type memTable struct {
	rows    []Row
	nextID  uint64
	uniques [][]string
}

// NewMemoryStore returns a store with the seating schema declared.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{tables: map[string]*memTable{}}
	s.declare(TableGuests, []string{"id"})
	s.declare(TableTables, []string{"id"}, []string{"table_number"})
	s.declare(TableAssignments, []string{"id"}, []string{"guest_id"}, []string{"table_number", "seat_number"})
	return s
}

func (s *MemoryStore) declare(table string, uniques ...[]string) {
	s.tables[table] = &memTable{uniques: uniques}
}

func (s *MemoryStore) table(name string) (*memTable, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// Select returns copies of matching rows in insertion order.
func (s *MemoryStore) Select(_ context.Context, table string, filters ...Filter) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range t.rows {
		if matches(r, filters) {
			out = append(out, copyRow(r))
		}
	}
	return out, nil
}

// Insert adds a row, assigning an integer id when none is given.
func (s *MemoryStore) Insert(_ context.Context, table string, row Row) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	r := make(Row, len(row)+2)
	for k, v := range row {
		r[k] = normalize(v)
	}
	if isNull(r["id"]) {
		r["id"] = t.nextID + 1
	}
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = time.Now().UTC()
	}
	if err := t.checkUnique(append(t.rows[:len(t.rows):len(t.rows)], r)); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	if id, ok := r["id"].(uint64); ok && id > t.nextID {
		t.nextID = id
	}
	t.rows = append(t.rows, r)
	return copyRow(r), nil
}

// Update patches matching rows.  Either every row is updated or, on a
// uniqueness violation, none is.
func (s *MemoryStore) Update(_ context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	next := make([]Row, len(t.rows))
	var changed []int
	for i, r := range t.rows {
		if !matches(r, filters) {
			next[i] = r
			continue
		}
		nr := copyRow(r)
		for k, v := range patch {
			nr[k] = normalize(v)
		}
		next[i] = nr
		changed = append(changed, i)
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := t.checkUnique(next); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	t.rows = next
	out := make([]Row, 0, len(changed))
	for _, i := range changed {
		out = append(out, copyRow(next[i]))
	}
	return out, nil
}

// Delete removes matching rows and returns them.
func (s *MemoryStore) Delete(_ context.Context, table string, filters ...Filter) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	kept := t.rows[:0:0]
	var removed []Row
	for _, r := range t.rows {
		if matches(r, filters) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return removed, nil
}

func (t *memTable) checkUnique(rows []Row) error {
	for _, cols := range t.uniques {
		seen := make(map[string]bool, len(rows))
		for _, r := range rows {
			key, ok := uniqueKey(r, cols)
			if !ok {
				continue
			}
			if seen[key] {
				return fmt.Errorf("%w: (%s)", ErrUniqueViolation, strings.Join(cols, ", "))
			}
			seen[key] = true
		}
	}
	return nil
}

// uniqueKey builds the index key; rows with a NULL in any column are not
// indexed, as in SQL.
func uniqueKey(r Row, cols []string) (string, bool) {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		v := r[c]
		if isNull(v) {
			return "", false
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "\x00"), true
}

func matches(r Row, filters []Filter) bool {
	for _, f := range filters {
		v := r[f.Column]
		switch f.Op {
		case OpEq:
			want := normalize(f.Value)
			if isNull(want) {
				if !isNull(v) {
					return false
				}
				continue
			}
			if isNull(v) || fmt.Sprint(v) != fmt.Sprint(want) {
				return false
			}
		case OpILike:
			if isNull(v) {
				return false
			}
			if !strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(f.Value))) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// normalize dereferences pointer values so stored rows only hold plain
// values or nil.
func normalize(v any) any {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case time.Time:
		return t.UTC()
	case *int:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

func copyRow(r Row) Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
