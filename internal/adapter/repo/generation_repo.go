// Package repo provides PostgreSQL-backed persistence adapters. The
// generation repository records attempt outcomes for observability; the
// orchestration core never depends on it.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a generation-record repository backed by
// PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Create inserts one generation record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, record *domain.GenerationRecord) error {
	query := `
INSERT INTO generations (id, request_id, prompt, adapter, variant, status, error_kind, error_message, artifact_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.RequestID,
		record.Prompt,
		record.Adapter,
		record.Variant,
		record.Status,
		record.ErrorKind,
		record.ErrorMessage,
		record.ArtifactRef,
	)
	if err != nil {
		return fmt.Errorf("repo: insert generation: %w", err)
	}
	return nil
}

// ListRecent fetches the latest records, newest first.
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
SELECT id, request_id, prompt, adapter, variant, status, error_kind, error_message, artifact_ref, created_at
FROM generations
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: list generations: %w", err)
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		var rec domain.GenerationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.Prompt,
			&rec.Adapter,
			&rec.Variant,
			&rec.Status,
			&rec.ErrorKind,
			&rec.ErrorMessage,
			&rec.ArtifactRef,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("repo: scan generation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate generations: %w", err)
	}
	return records, nil
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
