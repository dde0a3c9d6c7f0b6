package storage

import (
	"context"

	"flyer-studio/models"
)

// PatternStore persists the learning engine's pattern library between runs.
type PatternStore interface {
	SavePatterns(ctx context.Context, snap models.PatternLibrarySnapshot) error
	LoadPatterns(ctx context.Context) (*models.PatternLibrarySnapshot, error)
	Close() error
}

// RecordWriter persists generation records for offline review.
type RecordWriter interface {
	WriteRecords(records []models.GenerationRecord) error
	Close() error
}
