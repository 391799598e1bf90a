package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/application"
	"github.com/habarihub/mediamon/internal/domain/ai"
	"github.com/habarihub/mediamon/internal/domain/projects"
	"github.com/habarihub/mediamon/internal/infra/ai/prompt"
)

// defaultThemes is the taxonomy a project falls back to when the generator
// cannot produce one.
var defaultThemes = []struct{ Name, Description string }{
	{"Industry Interference", "Direct industry attempts to influence policy or public institutions."},
	{"Policy Manipulation", "Efforts to shape, delay or weaken regulation."},
	{"Public Narratives", "Framing and messaging campaigns aimed at public opinion."},
	{"Regulatory Frameworks", "Coverage of laws, enforcement and compliance."},
	{"Advocacy and Influence", "Civil society, lobbying and coalition activity."},
}

// Service implements project and taxonomy use-cases.
type Service struct {
	Projects projects.Repository
	Themes   projects.ThematicAreaRepository
	Chat     ai.ChatClient
	Clock    application.Clock
	Log      zerolog.Logger
}

// CreateProjectCommand carries a new research brief.
type CreateProjectCommand struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ClientID    string   `json:"client_id"`
	SourceIDs   []string `json:"source_ids"`
}

// CreateProject stores the project with its source subscriptions.
func (s *Service) CreateProject(ctx context.Context, cmd CreateProjectCommand) (*projects.Project, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("project title is required")
	}
	p := &projects.Project{
		ID:          projects.ProjectID(uuid.New().String()),
		Title:       cmd.Title,
		Description: cmd.Description,
		ClientID:    cmd.ClientID,
		CreatedAt:   s.Clock.Now().UTC(),
	}
	if err := s.Projects.Save(ctx, p, cmd.SourceIDs); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads one project.
func (s *Service) Get(ctx context.Context, id string) (*projects.Project, error) {
	return s.Projects.Get(ctx, projects.ProjectID(id))
}

// Dashboard returns the per-project rollups.
func (s *Service) Dashboard(ctx context.Context, id string) (*projects.Dashboard, error) {
	return s.Projects.Dashboard(ctx, projects.ProjectID(id))
}

// ListThemes returns the project taxonomy.
func (s *Service) ListThemes(ctx context.Context, projectID string) ([]*projects.ThematicArea, error) {
	return s.Themes.ListByProject(ctx, projects.ProjectID(projectID))
}

// AddTheme stores one taxonomy entry.
func (s *Service) AddTheme(ctx context.Context, projectID, name, description string) (*projects.ThematicArea, error) {
	if name == "" {
		return nil, fmt.Errorf("theme name is required")
	}
	a := &projects.ThematicArea{
		ID:          uuid.New().String(),
		ProjectID:   projects.ProjectID(projectID),
		Name:        name,
		Description: description,
		CreatedAt:   s.Clock.Now().UTC(),
	}
	if err := s.Themes.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteTheme removes one taxonomy entry.
func (s *Service) DeleteTheme(ctx context.Context, id string) error {
	return s.Themes.Delete(ctx, id)
}

type themeProposal struct {
	Themes []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"themes"`
}

// GenerateThemes asks the model for a taxonomy fitting the project brief and
// persists it. When the provider fails or returns nothing usable, the stock
// taxonomy is stored instead so classification always has themes to offer.
func (s *Service) GenerateThemes(ctx context.Context, projectID string) ([]*projects.ThematicArea, error) {
	p, err := s.Projects.Get(ctx, projects.ProjectID(projectID))
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	proposed := s.propose(ctx, p)

	now := s.Clock.Now().UTC()
	areas := make([]*projects.ThematicArea, 0, len(proposed))
	for _, t := range proposed {
		a := &projects.ThematicArea{
			ID:          uuid.New().String(),
			ProjectID:   p.ID,
			Name:        t.Name,
			Description: t.Description,
			CreatedAt:   now,
		}
		if err := s.Themes.Save(ctx, a); err != nil {
			return nil, fmt.Errorf("save theme %q: %w", t.Name, err)
		}
		areas = append(areas, a)
	}
	return areas, nil
}

func (s *Service) propose(ctx context.Context, p *projects.Project) []struct{ Name, Description string } {
	raw, err := s.Chat.Complete(ctx, prompt.ThematicGenSystemPrompt(), prompt.ThematicGenUserPrompt(p.Title, p.Description))
	if err != nil {
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("theme generation failed, using stock taxonomy")
		return defaultThemes
	}
	var reply themeProposal
	if err := ai.DecodeJSON(raw, &reply); err != nil {
		s.Log.Warn().Err(err).Str("project", string(p.ID)).Msg("theme generation returned malformed json, using stock taxonomy")
		return defaultThemes
	}

	out := make([]struct{ Name, Description string }, 0, len(reply.Themes))
	for _, t := range reply.Themes {
		if t.Name == "" {
			continue
		}
		out = append(out, struct{ Name, Description string }{t.Name, t.Description})
	}
	if len(out) == 0 {
		return defaultThemes
	}
	return out
}
