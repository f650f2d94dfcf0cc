package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/banketl/banketl/internal/model"
)

// ErrInvalidTableName is returned for table names that are not plain
// identifiers.
var ErrInvalidTableName = errors.New("invalid table name")

// Store is the single-file relational sink.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: the writer and the query runner share it in turn.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Store{conn: conn}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying database handle.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// WriteTable drops and recreates table, then inserts records in order.
// The whole operation is one transaction: on failure the previous table
// is left untouched.
func (s *Store) WriteTable(ctx context.Context, table string, records []model.EnrichedRecord) (err error) {
	name, err := QuoteIdent(table)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, createTableSQL(name)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(name))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		args := []any{r.Name}
		for _, a := range r.Amounts() {
			args = append(args, a.Float())
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QuoteIdent validates a table name and returns it double-quoted.
// Only letters, digits and underscores are accepted, not starting with a digit.
func QuoteIdent(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTableName)
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidTableName, name)
		}
	}
	return `"` + name + `"`, nil
}

func createTableSQL(table string) string {
	cols := make([]string, len(model.EnrichedColumns))
	for i, c := range model.EnrichedColumns {
		typ := "REAL"
		if c == model.ColName {
			typ = "TEXT"
		}
		cols[i] = fmt.Sprintf("%q %s", c, typ)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func insertSQL(table string) string {
	cols := make([]string, len(model.EnrichedColumns))
	for i, c := range model.EnrichedColumns {
		cols[i] = fmt.Sprintf("%q", c)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)
}
