package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	corerunlog "github.com/kilianp07/hive/core/runlog"
)

// SQLite persists scalars in a local database, one row per value.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens or creates the database at path and ensures schema.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite logger: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS scalars (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        prefix TEXT,
        name TEXT,
        value REAL
    );`
	index := `CREATE INDEX IF NOT EXISTS scalars_key ON scalars(prefix, name);`
	for _, stmt := range []string{schema, index} {
		if _, err = db.Exec(stmt); err != nil {
			break
		}
	}
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) LogScalar(name string, value float64, prefix string) error {
	_, err := s.db.Exec(`INSERT INTO scalars (ts, prefix, name, value) VALUES (?, ?, ?, ?)`,
		s.now().UnixNano(), prefix, name, value)
	return err
}

func (s *SQLite) LogMetrics(metrics map[string]float64, prefix string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	ts := s.now().UnixNano()
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, err := tx.Exec(`INSERT INTO scalars (ts, prefix, name, value) VALUES (?, ?, ?, ?)`,
			ts, prefix, k, metrics[k]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Records returns every stored value in insertion order.
func (s *SQLite) Records(ctx context.Context) ([]corerunlog.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, prefix, name, value FROM scalars ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []corerunlog.Record
	for rows.Next() {
		var ts int64
		var r corerunlog.Record
		if err := rows.Scan(&ts, &r.Prefix, &r.Name, &r.Value); err != nil {
			return nil, err
		}
		r.Time = time.Unix(0, ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Series returns the values logged under name and prefix, oldest first.
func (s *SQLite) Series(ctx context.Context, name, prefix string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM scalars WHERE name = ? AND prefix = ? ORDER BY id`, name, prefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
