package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// Dialect selects SQL flavour details that differ between drivers.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite3"
)

// SQLStore implements Store on top of database/sql.  Every table it touches
// must have an `id` primary key column; returned rows are re-read by id so
// callers see database defaults.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect reports which SQL flavour the store speaks.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// Exec runs a raw statement.  It implements RawExecer.
func (s *SQLStore) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return translateErr(err)
}

// Select returns all rows of table matching filters.
func (s *SQLStore) Select(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	where, args, err := s.where(filters)
	if err != nil {
		return nil, err
	}
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	return queryRows(ctx, s.db, "SELECT * FROM "+quote(table)+where, args...)
}

// Insert adds a row and returns it as stored.
func (s *SQLStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	cols := sortedColumns(row)
	if len(cols) == 0 {
		return nil, fmt.Errorf("insert into %s: empty row", table)
	}
	quoted := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		if err := checkIdent(c); err != nil {
			return nil, err
		}
		quoted = append(quoted, quote(c))
		args = append(args, row[c])
	}
	q := "INSERT INTO " + quote(table) + " (" + strings.Join(quoted, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, translateErr(err))
	}
	var id any = row["id"]
	if isNull(id) {
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		id = lastID
	}
	rows, err := queryRows(ctx, s.db, "SELECT * FROM "+quote(table)+" WHERE `id` = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s: row %v not readable after insert", table, id)
	}
	return rows[0], nil
}

// Update applies patch to every matching row and returns the updated rows.
// Matching, writing and re-reading happen inside one transaction.
func (s *SQLStore) Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	cols := sortedColumns(patch)
	if len(cols) == 0 {
		return s.Select(ctx, table, filters...)
	}
	where, whereArgs, err := s.where(filters)
	if err != nil {
		return nil, err
	}
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(whereArgs))
	for _, c := range cols {
		if err := checkIdent(c); err != nil {
			return nil, err
		}
		sets = append(sets, quote(c)+" = ?")
		args = append(args, patch[c])
	}

	var out []Row
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		ids, err := selectIDs(ctx, tx, table, where, whereArgs)
		if err != nil || len(ids) == 0 {
			return err
		}
		inClause, idArgs := inList(ids)
		q := "UPDATE " + quote(table) + " SET " + strings.Join(sets, ", ") + " WHERE `id` IN " + inClause
		if _, err := tx.ExecContext(ctx, q, append(args, idArgs...)...); err != nil {
			return fmt.Errorf("update %s: %w", table, translateErr(err))
		}
		out, err = queryRows(ctx, tx, "SELECT * FROM "+quote(table)+" WHERE `id` IN "+inClause, idArgs...)
		return err
	})
	return out, err
}

// Delete removes every matching row and returns the removed rows.
func (s *SQLStore) Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	where, whereArgs, err := s.where(filters)
	if err != nil {
		return nil, err
	}
	var out []Row
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		out, err = queryRows(ctx, tx, "SELECT * FROM "+quote(table)+where, whereArgs...)
		if err != nil || len(out) == 0 {
			return err
		}
		ids := make([]any, 0, len(out))
		for _, r := range out {
			ids = append(ids, r["id"])
		}
		inClause, idArgs := inList(ids)
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quote(table)+" WHERE `id` IN "+inClause, idArgs...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, translateErr(err))
		}
		return nil
	})
	return out, err
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateErr(err)
	}
	committed = true
	return nil
}

func (s *SQLStore) where(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if err := checkIdent(f.Column); err != nil {
			return "", nil, err
		}
		switch f.Op {
		case OpEq:
			if isNull(f.Value) {
				parts = append(parts, quote(f.Column)+" IS NULL")
				continue
			}
			parts = append(parts, quote(f.Column)+" = ?")
			args = append(args, f.Value)
		case OpILike:
			esc := `'\'`
			if s.dialect == DialectMySQL {
				esc = `'\\'`
			}
			parts = append(parts, "LOWER("+quote(f.Column)+") LIKE ? ESCAPE "+esc)
			args = append(args, "%"+escapeLike(strings.ToLower(fmt.Sprint(f.Value)))+"%")
		default:
			return "", nil, fmt.Errorf("unsupported filter op %d", f.Op)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRows(ctx context.Context, q querier, query string, args ...any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			// drivers may reuse byte slices between rows
			if b, ok := vals[i].([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func selectIDs(ctx context.Context, tx *sql.Tx, table, where string, args []any) ([]any, error) {
	rows, err := tx.QueryContext(ctx, "SELECT `id` FROM "+quote(table)+where, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var ids []any
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if b, ok := id.([]byte); ok {
			id = string(b)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func inList(ids []any) (string, []any) {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", ids
}

func sortedColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// quote wraps an identifier in backticks; both MySQL and SQLite accept them.
func quote(ident string) string { return "`" + ident + "`" }

func checkIdent(ident string) error {
	if ident == "" {
		return errors.New("empty identifier")
	}
	for i, r := range ident {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid identifier %q", ident)
		}
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// translateErr maps driver-specific uniqueness errors onto ErrUniqueViolation.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, myErr.Message)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, liteErr.Error())
	}
	return err
}
