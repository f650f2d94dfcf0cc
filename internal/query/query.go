// Package query runs the fixed read-only report queries against the
// relational sink.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/sink"
)

// ErrNotReadOnly is returned for statements that could modify the store.
var ErrNotReadOnly = errors.New("statement is not read-only")

// Statements returns the report queries for table, in execution order:
// every row, the average GBP market cap, and the first five names.
func Statements(table string) ([]string, error) {
	name, err := sink.QuoteIdent(table)
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("SELECT * FROM %s", name),
		fmt.Sprintf("SELECT AVG(%s) FROM %s", model.ColMCGBP, name),
		fmt.Sprintf("SELECT %s FROM %s LIMIT 5", model.ColName, name),
	}, nil
}

// Result holds the rows returned by one statement.
type Result struct {
	Statement string
	Columns   []string
	Rows      [][]any
}

// Run executes a single read-only statement. Only SELECT statements are
// accepted, and they run on a connection with query_only set so SQLite
// itself refuses any write.
func Run(ctx context.Context, db *sql.DB, stmt string) (*Result, error) {
	if !isReadQuery(stmt) {
		return nil, fmt.Errorf("%w: %q", ErrNotReadOnly, stmt)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("enable query_only: %w", err)
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA query_only = OFF") //nolint:errcheck

	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", stmt, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	res := &Result{Statement: stmt, Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return res, nil
}

// RunAll executes statements in order and stops at the first failure.
func RunAll(ctx context.Context, db *sql.DB, stmts []string) ([]*Result, error) {
	results := make([]*Result, 0, len(stmts))
	for _, s := range stmts {
		res, err := Run(ctx, db, s)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Print writes the statement followed by an aligned table of its rows.
func (r *Result) Print(w io.Writer) error {
	if _, err := fmt.Fprintln(w, r.Statement); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\t"+strings.Join(r.Columns, "\t"))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		fmt.Fprintln(tw, strconv.Itoa(i)+"\t"+strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// FormatValue renders a scanned SQL value. NULL prints as "NULL".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// isReadQuery accepts statements starting with SELECT. WITH is refused
// because SQLite allows a CTE in front of DELETE, INSERT and UPDATE.
func isReadQuery(stmt string) bool {
	q := strings.ToUpper(strings.TrimSpace(stmt))
	return strings.HasPrefix(q, "SELECT")
}
