package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(target string) *models.ReviewRecord {
	return &models.ReviewRecord{
		Target:     target,
		ReviewType: "full",
		Result: &models.ReviewResult{
			Findings: []models.Finding{
				{
					RuleID:   "security.hardcoded_secrets",
					Severity: models.SeverityError,
					Category: models.CategorySecurity,
					Message:  "Credential appears to be hardcoded",
					FilePath: "app.py",
					Line:     12,
					Source:   models.SourceStatic,
				},
			},
			Summary: models.Summary{
				Counts:          models.SeverityCounts{Errors: 1},
				HighestSeverity: models.SeverityError,
			},
			FilesReviewed: 3,
			StartedAt:     time.Now().UTC().Truncate(time.Second),
			DurationMS:    42,
		},
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("src/")
	require.NoError(t, s.SaveRun(ctx, rec))
	require.NotEmpty(t, rec.ID)

	got, err := s.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "src/", got.Target)
	assert.Equal(t, "full", got.ReviewType)
	require.NotNil(t, got.Result)
	require.Len(t, got.Result.Findings, 1)
	assert.Equal(t, "security.hardcoded_secrets", got.Result.Findings[0].RuleID)
	assert.Equal(t, 1, got.Result.Summary.Counts.Errors)
	assert.Equal(t, 3, got.Result.FilesReviewed)
}

func TestSaveRun_UsesResultRunID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("src/")
	rec.Result.RunID = "01JDEADBEEF00000000000000X"
	require.NoError(t, s.SaveRun(ctx, rec))
	assert.Equal(t, "01JDEADBEEF00000000000000X", rec.ID)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns_NewestFirstWithFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := sampleRecord("a/")
	old.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, s.SaveRun(ctx, old))

	recent := sampleRecord("b/")
	recent.CreatedAt = time.Now().UTC()
	require.NoError(t, s.SaveRun(ctx, recent))

	runs, err := s.ListRuns(ctx, RunListFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b/", runs[0].Target)
	assert.Equal(t, "a/", runs[1].Target)

	runs, err = s.ListRuns(ctx, RunListFilter{Target: "a/"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a/", runs[0].Target)

	runs, err = s.ListRuns(ctx, RunListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestDeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("src/")
	require.NoError(t, s.SaveRun(ctx, rec))
	require.NoError(t, s.DeleteRun(ctx, rec.ID))

	_, err := s.GetRun(ctx, rec.ID)
	assert.Error(t, err)

	err = s.DeleteRun(ctx, rec.ID)
	assert.Error(t, err, "deleting twice reports not found")
}

func TestCleanupOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := sampleRecord("old/")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, s.SaveRun(ctx, old))

	fresh := sampleRecord("fresh/")
	require.NoError(t, s.SaveRun(ctx, fresh))

	n, err := s.CleanupOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := s.ListRuns(ctx, RunListFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "fresh/", runs[0].Target)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
