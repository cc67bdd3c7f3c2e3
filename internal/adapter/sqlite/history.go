// Package sqlite records published report snapshots in a local SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/weather-widget/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
  id               INTEGER PRIMARY KEY AUTOINCREMENT,
  cycle_id         TEXT    NOT NULL UNIQUE,
  published_at     TEXT    NOT NULL,
  header           TEXT    NOT NULL,
  lines            TEXT    NOT NULL,
  icon_temperature INTEGER
);
CREATE INDEX IF NOT EXISTS idx_reports_published_at ON reports(published_at);
`

// timeLayout is fixed width so published_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// History appends every published snapshot to the reports table. It
// implements pipeline.Sink.
type History struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*History, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("history open: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &History{db: db, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (h *History) Name() string { return "history" }

// Publish inserts s. Re-publishing a cycle ID is a no-op.
func (h *History) Publish(ctx context.Context, s report.Snapshot) error {
	lines, err := json.Marshal(s.Report.Lines)
	if err != nil {
		return fmt.Errorf("marshal report lines: %w", err)
	}

	var icon sql.NullInt64
	if t := s.Report.IconTemperature; t != nil {
		icon = sql.NullInt64{Int64: *t, Valid: true}
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO reports (cycle_id, published_at, header, lines, icon_temperature)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cycle_id) DO NOTHING`,
		s.CycleID,
		s.PublishedAt.UTC().Format(timeLayout),
		s.Report.Header,
		string(lines),
		icon,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Recent returns up to n snapshots, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]report.Snapshot, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT cycle_id, published_at, header, lines, icon_temperature
		 FROM reports
		 ORDER BY published_at DESC, id DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			h.logger.Error("close report rows", "error", err)
		}
	}()

	out := []report.Snapshot{}
	for rows.Next() {
		var (
			s     report.Snapshot
			ts    string
			lines string
			icon  sql.NullInt64
		)
		if err := rows.Scan(&s.CycleID, &ts, &s.Report.Header, &lines, &icon); err != nil {
			return nil, err
		}
		if s.PublishedAt, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse published_at %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(lines), &s.Report.Lines); err != nil {
			return nil, fmt.Errorf("decode report lines: %w", err)
		}
		if icon.Valid {
			t := icon.Int64
			s.Report.IconTemperature = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
