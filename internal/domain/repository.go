package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// GenerationRepository persists generation records. Implementations live in
// internal/adapter/repo; callers must tolerate a nil repository (no database
// configured).
type GenerationRepository interface {
	Create(ctx context.Context, record *GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
