package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/habarihub/mediamon/internal/domain/media"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, source_id, raw_title, raw_text, url, published_at, scraped_at,
       industry_name, industry_tactic, stakeholders, targeted_policy,
       geographical_focus, outcome_impact, archive_url, analysis_status`

// Save insert/update an item keyed on its unique url.
func (r *MediaRepository) Save(ctx context.Context, m *domain.MediaItem) error {
	const q = `
INSERT INTO media_items
(id, source_id, raw_title, raw_text, url, published_at, scraped_at,
 industry_name, industry_tactic, stakeholders, targeted_policy,
 geographical_focus, outcome_impact, archive_url, analysis_status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (url) DO UPDATE SET
 raw_title = EXCLUDED.raw_title, raw_text = EXCLUDED.raw_text,
 published_at = EXCLUDED.published_at, scraped_at = EXCLUDED.scraped_at,
 archive_url = EXCLUDED.archive_url;`
	scraped := m.ScrapedAt
	if scraped.IsZero() {
		scraped = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.SourceID, m.RawTitle, m.RawText, m.URL, m.PublishedAt, scraped,
		m.Fields.IndustryName, m.Fields.IndustryTactic, joinList(m.Fields.Stakeholders),
		m.Fields.TargetedPolicy, m.Fields.GeographicalFocus, m.Fields.OutcomeImpact,
		m.ArchiveURL, m.Status,
	)
	return err
}

// Get by ID
func (r *MediaRepository) Get(ctx context.Context, id domain.ItemID) (*domain.MediaItem, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media_items WHERE id=$1 LIMIT 1;`
	return r.scanItem(r.db.QueryRowContext(ctx, q, id))
}

// FindByURL returns (nil, nil) when no item exists for the URL.
func (r *MediaRepository) FindByURL(ctx context.Context, url string) (*domain.MediaItem, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media_items WHERE url=$1 LIMIT 1;`
	item, err := r.scanItem(r.db.QueryRowContext(ctx, q, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *MediaRepository) scanItem(row *sql.Row) (*domain.MediaItem, error) {
	var m domain.MediaItem
	var published sql.NullTime
	var stakeholders, archive sql.NullString
	if err := row.Scan(
		&m.ID, &m.SourceID, &m.RawTitle, &m.RawText, &m.URL, &published, &m.ScrapedAt,
		&m.Fields.IndustryName, &m.Fields.IndustryTactic, &stakeholders,
		&m.Fields.TargetedPolicy, &m.Fields.GeographicalFocus, &m.Fields.OutcomeImpact,
		&archive, &m.Status,
	); err != nil {
		return nil, err
	}
	if published.Valid {
		t := published.Time
		m.PublishedAt = &t
	}
	m.Fields.Stakeholders = splitList(stakeholders.String)
	m.ArchiveURL = archive.String
	return &m, nil
}

// List recent items with their source name
func (r *MediaRepository) List(ctx context.Context, limit int) ([]*domain.ItemListing, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT m.id, m.raw_title, LEFT(m.raw_text, 280), m.url, m.analysis_status, m.scraped_at,
       COALESCE(s.name, '')
FROM media_items m
LEFT JOIN media_sources s ON s.id = m.source_id
ORDER BY m.scraped_at DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ItemListing
	for rows.Next() {
		var l domain.ItemListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Preview, &l.URL, &l.Status, &l.ScrapedAt, &l.SourceName); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// IDsByStatus returns item ids in a given analysis state, oldest first.
func (r *MediaRepository) IDsByStatus(ctx context.Context, status domain.AnalysisStatus) ([]domain.ItemID, error) {
	const q = `SELECT id FROM media_items WHERE analysis_status=$1 ORDER BY scraped_at;`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ItemID
	for rows.Next() {
		var id domain.ItemID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpdateExtraction stores the extraction result and advances the status.
func (r *MediaRepository) UpdateExtraction(ctx context.Context, id domain.ItemID, f domain.ExtractedFields, status domain.AnalysisStatus) error {
	const q = `
UPDATE media_items SET
 industry_name=$1, industry_tactic=$2, stakeholders=$3, targeted_policy=$4,
 geographical_focus=$5, outcome_impact=$6, analysis_status=$7
WHERE id=$8;`
	_, err := r.db.ExecContext(ctx, q,
		f.IndustryName, f.IndustryTactic, joinList(f.Stakeholders),
		f.TargetedPolicy, f.GeographicalFocus, f.OutcomeImpact,
		status, id,
	)
	return err
}

// Stats corpus-wide status counters
func (r *MediaRepository) Stats(ctx context.Context) (domain.ItemStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE analysis_status='raw'),
       COUNT(*) FILTER (WHERE analysis_status='extracted')
FROM media_items;`
	var st domain.ItemStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&st.Total, &st.Raw, &st.Extracted); err != nil {
		return domain.ItemStats{}, err
	}
	return st, nil
}
