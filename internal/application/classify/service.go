package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/application"
	"github.com/habarihub/mediamon/internal/domain/ai"
	"github.com/habarihub/mediamon/internal/domain/analysis"
	"github.com/habarihub/mediamon/internal/domain/media"
	"github.com/habarihub/mediamon/internal/domain/projects"
	"github.com/habarihub/mediamon/internal/infra/ai/prompt"
)

// Service implements the per-article classification pipeline: for every
// project linked to an item it runs the relevance gates, matches themes, and
// writes one analysis record. Extraction runs once per item when any project
// found it relevant.
type Service struct {
	Items    media.ItemRepository
	Links    media.LinkRepository
	Projects projects.Repository
	Themes   projects.ThematicAreaRepository
	Analyses analysis.Repository
	Chat     ai.ChatClient
	Embedder ai.Embedder // optional; nil disables the similarity gate
	Clock    application.Clock
	Log      zerolog.Logger

	SimilarityThreshold float64
	RequireThemeMatch   bool
	PreviewChars        int
	MinBodyChars        int
}

// relevanceReply is the adjudication schema.
type relevanceReply struct {
	Relevant   bool   `json:"relevant"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
	Summary    string `json:"summary"`
}

type themesReply struct {
	ThemeIDs []string `json:"theme_ids"`
}

type verdict struct {
	project    *projects.Project
	relevant   bool
	confidence int
	reason     string
	summary    string
	themeIDs   []string
	themeMeta  []analysis.ThemeRef
}

// ProcessItem classifies one item against every project it is linked to.
// Provider failures during relevance and theme matching degrade gracefully;
// a failed field extraction is a hard error.
func (s *Service) ProcessItem(ctx context.Context, itemID string) error {
	item, err := s.Items.Get(ctx, media.ItemID(itemID))
	if err != nil {
		return fmt.Errorf("load item %s: %w", itemID, err)
	}

	text := item.RawText
	if len(strings.TrimSpace(text)) < s.MinBodyChars && item.RawTitle != "" {
		// short bodies get the headline prepended for signal
		text = strings.TrimSpace(item.RawTitle + "\n\n" + text)
	}
	if strings.TrimSpace(text) == "" {
		// nothing to classify; settle the item without any provider calls
		s.Log.Debug().Str("item", itemID).Msg("empty item, marking extracted")
		return s.Items.UpdateExtraction(ctx, item.ID, emptyFields(), media.StatusExtracted)
	}

	projectIDs, err := s.Links.ProjectIDsForItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("resolve projects for item %s: %w", itemID, err)
	}
	if len(projectIDs) == 0 {
		return s.Items.UpdateExtraction(ctx, item.ID, emptyFields(), media.StatusExtracted)
	}

	var articleVec []float32
	if s.Embedder != nil {
		articleVec, err = s.Embedder.Embed(ctx, text)
		if err != nil {
			s.Log.Warn().Err(err).Str("item", itemID).Msg("article embedding failed, similarity gate disabled for this item")
			articleVec = nil
		}
	}

	verdicts := make([]verdict, 0, len(projectIDs))
	anyRelevant := false
	for _, pid := range projectIDs {
		p, err := s.Projects.Get(ctx, projects.ProjectID(pid))
		if err != nil {
			return fmt.Errorf("load project %s: %w", pid, err)
		}
		v := s.judge(ctx, p, item, text, articleVec)
		if v.relevant {
			anyRelevant = true
		}
		verdicts = append(verdicts, v)
	}

	fields := emptyFields()
	if anyRelevant {
		fields, err = s.extractFields(ctx, item, text)
		if err != nil {
			return fmt.Errorf("extract fields for item %s: %w", itemID, err)
		}
	}
	if err := s.Items.UpdateExtraction(ctx, item.ID, fields, media.StatusExtracted); err != nil {
		return fmt.Errorf("update item %s: %w", itemID, err)
	}

	now := s.Clock.Now().UTC()
	for _, v := range verdicts {
		rec := &analysis.Record{
			ID:          analysis.RecordID(uuid.New().String()),
			MediaItemID: string(item.ID),
			ProjectID:   string(v.project.ID),
			Relevant:    v.relevant,
			Confidence:  v.confidence,
			Reason:      v.reason,
			ThemeIDs:    v.themeIDs,
			ThemeMeta:   v.themeMeta,
			Summary:     v.summary,
			CreatedAt:   now,
		}
		if v.relevant {
			rec.Fields = fields
		} else {
			rec.Fields = emptyFields()
		}
		if err := s.Analyses.Save(ctx, rec); err != nil {
			return fmt.Errorf("save analysis for item %s project %s: %w", itemID, v.project.ID, err)
		}
	}
	return nil
}

// judge runs the relevance gates and theme matching for one project.
func (s *Service) judge(ctx context.Context, p *projects.Project, item *media.MediaItem, text string, articleVec []float32) verdict {
	v := verdict{project: p}

	// cheap similarity gate before spending a chat call
	if articleVec != nil {
		brief := p.Title
		if p.Description != "" {
			brief = brief + ". " + p.Description
		}
		projectVec, err := s.Embedder.Embed(ctx, brief)
		if err != nil {
			s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("project embedding failed, skipping similarity gate")
		} else {
			sim := ai.CosineSimilarity(articleVec, projectVec)
			if sim < s.SimilarityThreshold {
				v.relevant = false
				v.confidence = clampConfidence(int((1 - sim) * 100))
				v.reason = fmt.Sprintf("below similarity threshold (%.2f < %.2f)", sim, s.SimilarityThreshold)
				return v
			}
		}
	}

	// weak keyword signal, diagnostic only
	if p.Title != "" && strings.Contains(strings.ToLower(text), strings.ToLower(p.Title)) {
		s.Log.Debug().Str("project", string(p.ID)).Str("item", string(item.ID)).Msg("project title appears verbatim in article")
	}

	reply, err := s.adjudicate(ctx, p, item, text)
	if err != nil {
		// fail open: an unreachable provider must not silently drop coverage
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Str("item", string(item.ID)).Msg("relevance adjudication failed, keeping article")
		v.relevant = true
		v.confidence = 0
		v.reason = "relevance adjudication unavailable"
	} else {
		v.relevant = reply.Relevant
		v.confidence = clampConfidence(reply.Confidence)
		v.reason = reply.Reason
		v.summary = reply.Summary
	}

	if v.relevant {
		v.themeIDs, v.themeMeta = s.matchThemes(ctx, p, item, text)
		if s.RequireThemeMatch && len(v.themeIDs) == 0 {
			v.relevant = false
			v.reason = "no thematic area matched"
		}
	}
	return v
}

func (s *Service) adjudicate(ctx context.Context, p *projects.Project, item *media.MediaItem, text string) (relevanceReply, error) {
	raw, err := s.Chat.Complete(ctx,
		prompt.RelevanceSystemPrompt(),
		prompt.RelevanceUserPrompt(p.Title, p.Description, item.RawTitle, text, s.PreviewChars))
	if err != nil {
		return relevanceReply{}, err
	}
	var reply relevanceReply
	if err := ai.DecodeJSON(raw, &reply); err != nil {
		return relevanceReply{}, err
	}
	return reply, nil
}

// matchThemes classifies the item against the project taxonomy. Any failure
// yields no matches rather than an error, and ids the model invents are
// dropped.
func (s *Service) matchThemes(ctx context.Context, p *projects.Project, item *media.MediaItem, text string) ([]string, []analysis.ThemeRef) {
	areas, err := s.Themes.ListByProject(ctx, p.ID)
	if err != nil {
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("loading thematic areas failed")
		return nil, nil
	}
	if len(areas) == 0 {
		return nil, nil
	}

	offered := make([]prompt.Theme, 0, len(areas))
	byID := make(map[string]*projects.ThematicArea, len(areas))
	for _, a := range areas {
		offered = append(offered, prompt.Theme{ID: a.ID, Name: a.Name, Description: a.Description})
		byID[a.ID] = a
	}

	raw, err := s.Chat.Complete(ctx,
		prompt.ThemesSystemPrompt(),
		prompt.ThemesUserPrompt(offered, item.RawTitle, text, s.PreviewChars))
	if err != nil {
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("theme classification failed")
		return nil, nil
	}
	var reply themesReply
	if err := ai.DecodeJSON(raw, &reply); err != nil {
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("theme classification returned malformed json")
		return nil, nil
	}

	var ids []string
	var meta []analysis.ThemeRef
	seen := make(map[string]bool)
	for _, id := range reply.ThemeIDs {
		a, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		meta = append(meta, analysis.ThemeRef{ID: a.ID, Name: a.Name})
	}
	return ids, meta
}

// extractFields pulls the structured record out of the article text. This is
// the one provider call that must succeed.
func (s *Service) extractFields(ctx context.Context, item *media.MediaItem, text string) (media.ExtractedFields, error) {
	raw, err := s.Chat.Complete(ctx, prompt.ExtractSystemPrompt(), prompt.ExtractUserPrompt(item.RawTitle, text))
	if err != nil {
		return media.ExtractedFields{}, err
	}
	var fields media.ExtractedFields
	if err := ai.DecodeJSON(raw, &fields); err != nil {
		return media.ExtractedFields{}, err
	}
	if fields.Stakeholders == nil {
		fields.Stakeholders = []string{}
	}
	return fields, nil
}

func emptyFields() media.ExtractedFields {
	return media.ExtractedFields{Stakeholders: []string{}}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
