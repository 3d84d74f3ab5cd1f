package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect selects placeholder syntax and DDL for SQLSource.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "pgx"
)

// ParseDialect maps a driver name or DSN scheme to a dialect.
func ParseDialect(raw string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqlite", "sqlite3", "file":
		return DialectSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("groups: unsupported sql dialect %q", raw)
	}
}

// OpenDSN opens a database from a DSN. "postgres://" and "postgresql://" use
// pgx; anything else is treated as a sqlite path or URI.
func OpenDSN(dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectSQLite
	if idx := strings.Index(dsn, "://"); idx > 0 {
		d, err := ParseDialect(dsn[:idx])
		if err != nil {
			return nil, "", err
		}
		dialect = d
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("groups: open %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// SQLSource reads groups from the customer_groups table.
type SQLSource struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB, dialect Dialect) *SQLSource {
	return &SQLSource{db: db, dialect: dialect, table: "customer_groups"}
}

// EnsureSchema creates the table when missing. Benefits are stored as a JSON array.
func (s *SQLSource) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		customer_count INTEGER NOT NULL DEFAULT 0,
		discount_percent INTEGER NOT NULL DEFAULT 0,
		benefits TEXT NOT NULL DEFAULT '[]',
		color_tag TEXT NOT NULL DEFAULT '',
		parent_id INTEGER NULL
	)`)
	if err != nil {
		return fmt.Errorf("groups: create %s table: %w", s.table, err)
	}
	return nil
}

// FetchAll returns every row in insertion order.
func (s *SQLSource) FetchAll(ctx context.Context) ([]GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, customer_count,
		discount_percent, benefits, color_tag, parent_id
		FROM `+s.table+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("groups: select groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []GroupRecord
	for rows.Next() {
		var (
			rec      GroupRecord
			benefits string
			color    string
			parent   sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.CustomerCount,
			&rec.DiscountPercent, &benefits, &color, &parent); err != nil {
			return nil, fmt.Errorf("groups: scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(benefits), &rec.Benefits); err != nil {
			return nil, fmt.Errorf("groups: decode benefits for group %d: %w", rec.ID, err)
		}
		if len(rec.Benefits) == 0 {
			rec.Benefits = nil
		}
		rec.ColorTag = ColorTag(color)
		if parent.Valid {
			rec.ParentID = ParentRef(int(parent.Int64))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groups: iterate groups: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps the table contents for records inside one transaction.
// Records keep their slice order through the position column.
func (s *SQLSource) ReplaceAll(ctx context.Context, records []GroupRecord) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("groups: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table); err != nil {
		return fmt.Errorf("groups: clear groups: %w", err)
	}
	insert := `INSERT INTO ` + s.table + ` (id, position, name, description, customer_count,
		discount_percent, benefits, color_tag, parent_id) VALUES (` + s.placeholders(9) + `)`
	for i, rec := range records {
		benefits, err := json.Marshal(nonNilStrings(rec.Benefits))
		if err != nil {
			return fmt.Errorf("groups: encode benefits for group %d: %w", rec.ID, err)
		}
		var parent sql.NullInt64
		if rec.ParentID != nil {
			parent = sql.NullInt64{Int64: int64(*rec.ParentID), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert, rec.ID, i, rec.Name, rec.Description,
			rec.CustomerCount, rec.DiscountPercent, string(benefits), string(rec.ColorTag), parent); err != nil {
			return fmt.Errorf("groups: insert group %d: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("groups: commit: %w", err)
	}
	return nil
}

func (s *SQLSource) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.dialect == DialectPostgres {
			parts[i] = "$" + strconv.Itoa(i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
