package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"skipper/internal/segment"
	"skipper/internal/services"
)

const schemaVersion = 1

// CategoryTotal aggregates skips for one category.
type CategoryTotal struct {
	Category     segment.Category
	SkipCount    int
	SecondsSaved float64
}

// Summary is the aggregate view served by the stats CLI.
type Summary struct {
	TotalSkips   int
	SecondsSaved float64
	ByCategory   []CategoryTotal
}

// Repository records skip events in a local SQLite database.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open initializes or connects to the statistics database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "stats", "open", "database path required", nil)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000"} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stats_schema_version (version INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS skip_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			category TEXT NOT NULL,
			seconds_saved REAL NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skip_events_category ON skip_events (category)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create stats schema: %w", err)
		}
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM stats_schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("read stats schema version: %w", err)
	}
	if count == 0 {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO stats_schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("write stats schema version: %w", err)
		}
	}
	return nil
}

// RecordSkip appends one skip event.
func (r *Repository) RecordSkip(ctx context.Context, videoID string, category segment.Category, secondsSaved float64) error {
	if secondsSaved < 0 {
		secondsSaved = 0
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO skip_events (video_id, category, seconds_saved, recorded_at) VALUES (?, ?, ?, ?)`,
		videoID, string(category), secondsSaved, r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrStorage, "stats", "record skip", videoID, err)
	}
	return nil
}

// Summarize aggregates all recorded skips, grouped by category. Composite
// categories from merged intervals are reported as their own rows.
func (r *Repository) Summarize(ctx context.Context) (*Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(1), COALESCE(SUM(seconds_saved), 0) FROM skip_events GROUP BY category`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "stats", "summarize", "aggregate skip events", err)
	}
	defer rows.Close()

	summary := &Summary{}
	for rows.Next() {
		var total CategoryTotal
		var category string
		if err := rows.Scan(&category, &total.SkipCount, &total.SecondsSaved); err != nil {
			return nil, services.Wrap(services.ErrStorage, "stats", "summarize", "scan row", err)
		}
		total.Category = segment.Category(category)
		summary.ByCategory = append(summary.ByCategory, total)
		summary.TotalSkips += total.SkipCount
		summary.SecondsSaved += total.SecondsSaved
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "stats", "summarize", "iterate rows", err)
	}

	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].SecondsSaved > summary.ByCategory[j].SecondsSaved
	})
	return summary, nil
}

// Reset deletes all recorded skip events and returns the number removed.
func (r *Repository) Reset(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM skip_events`)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "stats", "reset", "delete skip events", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}
