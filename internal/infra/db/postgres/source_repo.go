package postgres

import (
	"context"
	"database/sql"

	domain "github.com/habarihub/mediamon/internal/domain/media"
)

type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Save insert/update a media source
func (r *SourceRepository) Save(ctx context.Context, s *domain.MediaSource) error {
	const q = `
INSERT INTO media_sources (id, name, feed_url)
VALUES ($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET
 name = EXCLUDED.name, feed_url = EXCLUDED.feed_url;`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Name, s.FeedURL)
	return err
}

// Get by ID
func (r *SourceRepository) Get(ctx context.Context, id domain.SourceID) (*domain.MediaSource, error) {
	const q = `SELECT id, name, feed_url FROM media_sources WHERE id=$1 LIMIT 1;`
	var s domain.MediaSource
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.FeedURL); err != nil {
		return nil, err
	}
	return &s, nil
}

// List all sources
func (r *SourceRepository) List(ctx context.Context) ([]*domain.MediaSource, error) {
	const q = `SELECT id, name, feed_url FROM media_sources ORDER BY name;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.MediaSource
	for rows.Next() {
		var s domain.MediaSource
		if err := rows.Scan(&s.ID, &s.Name, &s.FeedURL); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
