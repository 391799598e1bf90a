package mysql

import (
	"context"
	"database/sql"

	domain "github.com/habarihub/mediamon/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save appends one classification outcome. Rows are never updated; the
// newest row per (item, project) wins.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO media_item_project_analysis
(id, media_item_id, project_id, relevant, relevance_confidence, relevance_reason,
 matched_thematic_area_ids, matched_thematic_area_meta, extracted_fields, summary, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?);
`
	themeMeta, err := jsonColumn(rec.ThemeMeta)
	if err != nil {
		return err
	}
	fields, err := jsonColumn(rec.Fields)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		rec.ID, rec.MediaItemID, rec.ProjectID, rec.Relevant, rec.Confidence, rec.Reason,
		joinList(rec.ThemeIDs), themeMeta, fields, rec.Summary, rec.CreatedAt,
	)
	return err
}

const recordColumns = `id, media_item_id, project_id, relevant, relevance_confidence, relevance_reason,
       matched_thematic_area_ids, matched_thematic_area_meta, extracted_fields, summary, created_at`

// ListByItem returns every record for an item, newest first.
func (r *AnalysisRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.Record, error) {
	const q = `
SELECT ` + recordColumns + `
FROM media_item_project_analysis
WHERE media_item_id=? ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var rec domain.Record
	var themeIDs, themeMeta, fields sql.NullString
	if err := rows.Scan(
		&rec.ID, &rec.MediaItemID, &rec.ProjectID, &rec.Relevant, &rec.Confidence, &rec.Reason,
		&themeIDs, &themeMeta, &fields, &rec.Summary, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.ThemeIDs = splitList(themeIDs.String)
	if err := scanJSON(themeMeta, &rec.ThemeMeta); err != nil {
		return nil, err
	}
	if err := scanJSON(fields, &rec.Fields); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RelevantArticles returns articles whose latest analysis for the project is
// a positive verdict.
func (r *AnalysisRepository) RelevantArticles(ctx context.Context, projectID string) ([]*domain.RelevantArticle, error) {
	const q = `
SELECT m.id, m.raw_title, m.url, m.raw_text
FROM media_item_project_analysis a
JOIN (
  SELECT media_item_id, MAX(created_at) AS latest
  FROM media_item_project_analysis
  WHERE project_id=?
  GROUP BY media_item_id
) x ON x.media_item_id = a.media_item_id AND x.latest = a.created_at
JOIN media_items m ON m.id = a.media_item_id
WHERE a.project_id=? AND a.relevant=1
ORDER BY m.scraped_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RelevantArticle
	for rows.Next() {
		var a domain.RelevantArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Body); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// AnalysedForProject lists extracted items linked to the project together
// with their latest analysis row and source.
func (r *AnalysisRepository) AnalysedForProject(ctx context.Context, projectID string) ([]*domain.AnalysedItem, error) {
	const q = `
SELECT m.id, m.raw_title, m.url, m.published_at, m.scraped_at,
       m.source_id, COALESCE(s.name, ''),
       a.relevant, a.matched_thematic_area_meta, a.extracted_fields, a.summary
FROM media_item_project_analysis a
JOIN (
  SELECT media_item_id, MAX(created_at) AS latest
  FROM media_item_project_analysis
  WHERE project_id=?
  GROUP BY media_item_id
) x ON x.media_item_id = a.media_item_id AND x.latest = a.created_at
JOIN media_items m ON m.id = a.media_item_id
LEFT JOIN media_sources s ON s.id = m.source_id
WHERE a.project_id=? AND m.analysis_status='extracted'
ORDER BY m.scraped_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysedItem
	for rows.Next() {
		var it domain.AnalysedItem
		var published sql.NullTime
		var themeMeta, fields sql.NullString
		if err := rows.Scan(
			&it.MediaItemID, &it.Title, &it.URL, &published, &it.ScrapedAt,
			&it.SourceID, &it.SourceName,
			&it.Relevant, &themeMeta, &fields, &it.Summary,
		); err != nil {
			return nil, err
		}
		if published.Valid {
			t := published.Time
			it.PublishedAt = &t
		}
		if err := scanJSON(themeMeta, &it.Themes); err != nil {
			return nil, err
		}
		if err := scanJSON(fields, &it.Fields); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
