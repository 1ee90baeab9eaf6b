package repository

import (
	"context"

	"hackmaster/internal/domain"
)

// Runs defines data access for wordlist generation runs
type Runs interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	// GetRun returns nil, nil when no run has the given ID
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// ListRuns returns runs newest first; limit <= 0 means no limit
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	DeleteRun(ctx context.Context, id string) error
	// CountRunsByFilename reports how many recorded runs wrote to filename
	CountRunsByFilename(ctx context.Context, filename string) (int, error)

	// Close releases resources
	Close() error
}
