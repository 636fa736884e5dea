package patterns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p *Pattern) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pattern, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Pattern, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, p *Pattern) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patterns (id, owner_user_id, name, source_urls, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OwnerUserID, p.Name, p.SourceURLs, p.Analysis, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting pattern: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no pattern has that id.
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Pattern, error) {
	p := &Pattern{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_user_id, name, source_urls, analysis, created_at
		FROM patterns WHERE id = $1`, id,
	).Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.SourceURLs, &p.Analysis, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying pattern by id: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Pattern, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_user_id, name, source_urls, analysis, created_at
		FROM patterns
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var out []*Pattern
	for rows.Next() {
		p := &Pattern{}
		if err := rows.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.SourceURLs, &p.Analysis, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pattern row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patterns WHERE owner_user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting patterns: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pattern: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
