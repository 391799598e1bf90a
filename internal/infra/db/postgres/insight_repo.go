package postgres

import (
	"context"
	"database/sql"

	domain "github.com/habarihub/mediamon/internal/domain/insights"
)

type InsightRepository struct {
	db *sql.DB
}

func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Save appends one snapshot. Snapshots are immutable.
func (r *InsightRepository) Save(ctx context.Context, i *domain.Insight) error {
	const q = `
INSERT INTO project_insights
(id, project_id, generated_at, article_count, executive_summary,
 topic_clusters, subthemes,
 sentiment_positive, sentiment_negative, sentiment_neutral,
 entities, risks, opportunities, recommendations, article_links, highlights)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16);`
	clusters, err := jsonColumn(i.TopicClusters)
	if err != nil {
		return err
	}
	subthemes, err := jsonColumn(i.Subthemes)
	if err != nil {
		return err
	}
	entities, err := jsonColumn(i.Entities)
	if err != nil {
		return err
	}
	risks, err := jsonColumn(i.Risks)
	if err != nil {
		return err
	}
	opportunities, err := jsonColumn(i.Opportunities)
	if err != nil {
		return err
	}
	links, err := jsonColumn(i.ArticleLinks)
	if err != nil {
		return err
	}
	highlights, err := jsonColumn(i.Highlights)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		i.ID, i.ProjectID, i.GeneratedAt, i.ArticleCount, i.ExecutiveSummary,
		clusters, subthemes,
		i.Sentiment.Positive, i.Sentiment.Negative, i.Sentiment.Neutral,
		entities, risks, opportunities, i.Recommendations, links, highlights,
	)
	return err
}

// Latest returns the newest snapshot for a project.
func (r *InsightRepository) Latest(ctx context.Context, projectID string) (*domain.Insight, error) {
	const q = `
SELECT id, project_id, generated_at, article_count, executive_summary,
       topic_clusters, subthemes,
       sentiment_positive, sentiment_negative, sentiment_neutral,
       entities, risks, opportunities, recommendations, article_links, highlights
FROM project_insights
WHERE project_id=$1
ORDER BY generated_at DESC LIMIT 1;`
	var i domain.Insight
	var clusters, subthemes, entities, risks, opportunities, links, highlights sql.NullString
	if err := r.db.QueryRowContext(ctx, q, projectID).Scan(
		&i.ID, &i.ProjectID, &i.GeneratedAt, &i.ArticleCount, &i.ExecutiveSummary,
		&clusters, &subthemes,
		&i.Sentiment.Positive, &i.Sentiment.Negative, &i.Sentiment.Neutral,
		&entities, &risks, &opportunities, &i.Recommendations, &links, &highlights,
	); err != nil {
		return nil, err
	}
	if err := scanJSON(clusters, &i.TopicClusters); err != nil {
		return nil, err
	}
	if err := scanJSON(subthemes, &i.Subthemes); err != nil {
		return nil, err
	}
	if err := scanJSON(entities, &i.Entities); err != nil {
		return nil, err
	}
	if err := scanJSON(risks, &i.Risks); err != nil {
		return nil, err
	}
	if err := scanJSON(opportunities, &i.Opportunities); err != nil {
		return nil, err
	}
	if err := scanJSON(links, &i.ArticleLinks); err != nil {
		return nil, err
	}
	if err := scanJSON(highlights, &i.Highlights); err != nil {
		return nil, err
	}
	return &i, nil
}
