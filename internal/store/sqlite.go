package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gavelhq/gavel/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	return ulid.Make().String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists one review run. The full result is stored as JSON; the
// summary counts are denormalized into columns so history listings never
// deserialize every result.
func (s *SQLiteStore) SaveRun(ctx context.Context, rec *models.ReviewRecord) error {
	if rec.ID == "" {
		if rec.Result != nil && rec.Result.RunID != "" {
			rec.ID = rec.Result.RunID
		} else {
			rec.ID = newULID()
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode review result: %w", err)
	}

	var counts models.SeverityCounts
	if rec.Result != nil {
		counts = rec.Result.Summary.Counts
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, target, review_type, result_json, errors, warnings, suggestions, styles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Target, rec.ReviewType, string(resultJSON),
		counts.Errors, counts.Warnings, counts.Suggestions, counts.Styles,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save review run: %w", err)
	}
	return nil
}

// GetRun loads one review run with its full result.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*models.ReviewRecord, error) {
	rec := &models.ReviewRecord{}
	var resultJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, target, review_type, result_json, created_at FROM reviews WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Target, &rec.ReviewType, &resultJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review run: %w", err)
	}

	if resultJSON != "" && resultJSON != "null" {
		rec.Result = &models.ReviewResult{}
		if err := json.Unmarshal([]byte(resultJSON), rec.Result); err != nil {
			return nil, fmt.Errorf("decode review result %s: %w", id, err)
		}
	}
	return rec, nil
}

// ListRuns returns review runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunListFilter) ([]*models.ReviewRecord, error) {
	query := `SELECT id, target, review_type, result_json, created_at FROM reviews`
	var conditions []string
	var args []any

	if filter.Target != "" {
		conditions = append(conditions, "target = ?")
		args = append(args, filter.Target)
	}
	if filter.ReviewType != "" {
		conditions = append(conditions, "review_type = ?")
		args = append(args, filter.ReviewType)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*models.ReviewRecord
	for rows.Next() {
		rec := &models.ReviewRecord{}
		var resultJSON string
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.ReviewType, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review run: %w", err)
		}
		if resultJSON != "" && resultJSON != "null" {
			rec.Result = &models.ReviewResult{}
			if err := json.Unmarshal([]byte(resultJSON), rec.Result); err != nil {
				return nil, fmt.Errorf("decode review result %s: %w", rec.ID, err)
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteRun removes one review run.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete review run: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review run not found: %s", id)
	}
	return nil
}

// CleanupOlderThan removes runs created before the cutoff and reports how
// many were deleted.
func (s *SQLiteStore) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup review runs: %w", err)
	}
	return res.RowsAffected()
}
