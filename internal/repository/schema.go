package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema_mysql.sql
var mysqlSchema string

//go:embed schema_sqlite.sql
var sqliteSchema string

// Migrate creates the seating schema when the store accepts raw statements.
// Stores without raw access return ErrRawUnavailable; the caller decides
// whether that is fatal (it is not for MemoryStore, which needs no schema).
func Migrate(ctx context.Context, s Store) error {
	raw, ok := s.(RawExecer)
	if !ok {
		return ErrRawUnavailable
	}
	schema := mysqlSchema
	if d, ok := s.(interface{ Dialect() Dialect }); ok && d.Dialect() == DialectSQLite {
		schema = sqliteSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := raw.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
