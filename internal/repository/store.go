package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Storage table names.
const (
	TableGuests      = "guests"
	TableTables      = "seating_tables"
	TableAssignments = "seat_assignments"
)

// Op is a filter comparison operator.
type Op int

const (
	// OpEq matches values that are equal.
	OpEq Op = iota
	// OpILike matches string values that contain the filter value,
	// ignoring case.
	OpILike
)

// Filter restricts the rows an operation applies to.  Multiple filters are
// combined with AND.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

// ILike builds a case-insensitive substring filter.
func ILike(column, value string) Filter { return Filter{Column: column, Op: OpILike, Value: value} }

// Row is a single storage row keyed by column name.
type Row map[string]any

// Store is the row-oriented interface the engine needs from the persistent
// store.  Implementations must apply each call atomically and report
// uniqueness violations wrapped in ErrUniqueViolation.
type Store interface {
	Select(ctx context.Context, table string, filters ...Filter) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error)
	Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error)
}

// RawExecer is the optional raw-query escape hatch.  The engine never
// depends on it; only schema migration uses it when present.
type RawExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// String returns the column as a string ("" for NULL).
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns the column as *string, nil for NULL.
func (r Row) StringPtr(col string) *string {
	if isNull(r[col]) {
		return nil
	}
	s := r.String(col)
	return &s
}

// Int returns the column as int (0 for NULL or unparsable values).
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Uint64 returns the column as uint64.
func (r Row) Uint64(col string) uint64 {
	switch v := r[col].(type) {
	case uint64:
		return v
	case []byte:
		n, _ := strconv.ParseUint(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseUint(v, 10, 64)
		return n
	}
	if n := r.Int(col); n > 0 {
		return uint64(n)
	}
	return 0
}

// Bool returns the column as bool.  Integer columns (SQLite, MySQL TINYINT)
// are true when non-zero.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case []byte:
		s := string(v)
		return s == "1" || strings.EqualFold(s, "true")
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	}
	return r.Int(col) != 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// TimePtr returns the column as *time.Time in UTC, nil for NULL.
func (r Row) TimePtr(col string) *time.Time {
	var t time.Time
	switch v := r[col].(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return nil
		}
		t = *v
	case []byte, string:
		s := r.String(col)
		parsed := false
		for _, layout := range timeLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				t, parsed = p, true
				break
			}
		}
		if !parsed {
			return nil
		}
	default:
		return nil
	}
	t = t.UTC()
	return &t
}

// Time returns the column as time.Time (zero for NULL).
func (r Row) Time(col string) time.Time {
	if t := r.TimePtr(col); t != nil {
		return *t
	}
	return time.Time{}
}

func isNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *string:
		return t == nil
	case *time.Time:
		return t == nil
	case *int:
		return t == nil
	}
	return false
}
