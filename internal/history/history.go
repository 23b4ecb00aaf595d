// Package history is an optional sqlite journal of executed runs: one row
// per category per pass. It exists for operators (what did the monitor do,
// and when) and does not participate in change detection.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pumon/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// RunRecord is one executed category within one pass.
type RunRecord struct {
	At       time.Time
	Category string
	Fetched  int
	Notified int
	Failed   int // sinks that failed delivery
	Err      string
	TookMS   int64
}

// Journal writes run records. A nil Journal is a valid no-op (journal
// disabled by config).
type Journal struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (or creates) the journal. An empty path disables it and
// returns (nil, nil).
func Open(path string, log logx.Logger) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	j := &Journal{db: db, log: log.With(logx.String("component", "history"))}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, string(b))
	return err
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one run record. Failures are logged, not returned: the
// journal must never affect the pass outcome.
func (j *Journal) Record(ctx context.Context, r RunRecord) {
	if j == nil || j.db == nil {
		return
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs(at, category, fetched, notified, failed, err, took_ms)
		 VALUES(?,?,?,?,?,?,?)`,
		r.At.Format(time.RFC3339), r.Category, r.Fetched, r.Notified, r.Failed,
		nullStr(r.Err), r.TookMS,
	)
	if err != nil {
		j.log.Warn("journal insert failed", logx.Err(err))
	}
}

// Recent returns the latest n records, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if n <= 0 {
		n = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT at, category, fetched, notified, failed, COALESCE(err, ''), took_ms
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var at string
		if err := rows.Scan(&at, &r.Category, &r.Fetched, &r.Notified, &r.Failed, &r.Err, &r.TookMS); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339, at); perr == nil {
			r.At = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
