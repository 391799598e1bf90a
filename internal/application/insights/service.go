package insights

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/application"
	"github.com/habarihub/mediamon/internal/domain/ai"
	"github.com/habarihub/mediamon/internal/domain/analysis"
	"github.com/habarihub/mediamon/internal/domain/insights"
	"github.com/habarihub/mediamon/internal/domain/projects"
	"github.com/habarihub/mediamon/internal/infra/ai/prompt"
)

// Service synthesizes and retrieves project insight snapshots.
type Service struct {
	Projects projects.Repository
	Analyses analysis.Repository
	Insights insights.Repository
	Chat     ai.ChatClient
	Clock    application.Clock
	Log      zerolog.Logger

	ExcerptChars int
}

// insightReply is the synthesis schema.
type insightReply struct {
	ExecutiveSummary string             `json:"executive_summary"`
	TopicClusters    []string           `json:"topic_clusters"`
	Subthemes        []string           `json:"subthemes"`
	Sentiment        insights.Sentiment `json:"sentiment"`
	Entities         insights.Entities  `json:"entities"`
	Risks            []string           `json:"risks"`
	Opportunities    []string           `json:"opportunities"`
	Recommendations  string             `json:"recommendations"`
	ArticleLinks     []string           `json:"article_links"`
	Highlights       []string           `json:"highlights"`
}

// Generate builds a new snapshot from the project's relevant articles and
// stores it. A project with no relevant coverage gets an empty snapshot
// without any provider call. A malformed provider response is an error; no
// snapshot is written.
func (s *Service) Generate(ctx context.Context, projectID string) (*insights.Insight, error) {
	p, err := s.Projects.Get(ctx, projects.ProjectID(projectID))
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	articles, err := s.Analyses.RelevantArticles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load relevant articles: %w", err)
	}

	snap := &insights.Insight{
		ID:           insights.InsightID(uuid.New().String()),
		ProjectID:    projectID,
		GeneratedAt:  s.Clock.Now().UTC(),
		ArticleCount: len(articles),
	}

	if len(articles) == 0 {
		s.Log.Info().Str("project", projectID).Msg("no relevant articles, writing empty snapshot")
		fillEmpty(snap)
		if err := s.Insights.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		return snap, nil
	}

	batch := make([]prompt.Article, 0, len(articles))
	for _, a := range articles {
		batch = append(batch, prompt.Article{Title: a.Title, URL: a.URL, Body: a.Body})
	}

	raw, err := s.Chat.Complete(ctx,
		prompt.InsightSystemPrompt(),
		prompt.InsightUserPrompt(p.Title, p.Description, batch, s.ExcerptChars))
	if err != nil {
		return nil, fmt.Errorf("insight synthesis: %w", err)
	}
	var reply insightReply
	if err := ai.DecodeJSON(raw, &reply); err != nil {
		return nil, fmt.Errorf("insight synthesis: %w", err)
	}

	snap.ExecutiveSummary = reply.ExecutiveSummary
	snap.TopicClusters = orEmpty(reply.TopicClusters)
	snap.Subthemes = orEmpty(reply.Subthemes)
	snap.Sentiment = reply.Sentiment
	snap.Entities = reply.Entities
	snap.Risks = orEmpty(reply.Risks)
	snap.Opportunities = orEmpty(reply.Opportunities)
	snap.Recommendations = reply.Recommendations
	snap.ArticleLinks = orEmpty(reply.ArticleLinks)
	snap.Highlights = orEmpty(reply.Highlights)
	if snap.Entities.People == nil {
		snap.Entities.People = []string{}
	}
	if snap.Entities.Organizations == nil {
		snap.Entities.Organizations = []string{}
	}
	if snap.Entities.Locations == nil {
		snap.Entities.Locations = []string{}
	}

	if err := s.Insights.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the newest snapshot for a project.
func (s *Service) Latest(ctx context.Context, projectID string) (*insights.Insight, error) {
	return s.Insights.Latest(ctx, projectID)
}

// AnalysedMedia lists the project's extracted items with their latest
// analysis rows.
func (s *Service) AnalysedMedia(ctx context.Context, projectID string) ([]*analysis.AnalysedItem, error) {
	return s.Analyses.AnalysedForProject(ctx, projectID)
}

func fillEmpty(i *insights.Insight) {
	i.TopicClusters = []string{}
	i.Subthemes = []string{}
	i.Entities = insights.Entities{People: []string{}, Organizations: []string{}, Locations: []string{}}
	i.Risks = []string{}
	i.Opportunities = []string{}
	i.ArticleLinks = []string{}
	i.Highlights = []string{}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
