package store

import (
	"context"
	"time"

	"github.com/gavelhq/gavel/internal/models"
)

// RunListFilter specifies filters for listing review runs.
type RunListFilter struct {
	Target     string
	ReviewType string
	Limit      int
}

// Store defines the persistence interface for review history.
type Store interface {
	SaveRun(ctx context.Context, rec *models.ReviewRecord) error
	GetRun(ctx context.Context, id string) (*models.ReviewRecord, error)
	ListRuns(ctx context.Context, filter RunListFilter) ([]*models.ReviewRecord, error)
	DeleteRun(ctx context.Context, id string) error
	CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
