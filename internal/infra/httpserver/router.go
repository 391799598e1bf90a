package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appbatch "github.com/habarihub/mediamon/internal/application/batch"
	appingest "github.com/habarihub/mediamon/internal/application/ingest"
	appinsights "github.com/habarihub/mediamon/internal/application/insights"
	appprojects "github.com/habarihub/mediamon/internal/application/projects"
	domai "github.com/habarihub/mediamon/internal/domain/ai"
	"github.com/habarihub/mediamon/internal/middleware"
)

type Router struct {
	ingestSvc   *appingest.Service
	projectSvc  *appprojects.Service
	insightSvc  *appinsights.Service
	coordinator *appbatch.Coordinator
	log         zerolog.Logger
}

func NewRouter(
	ingestSvc *appingest.Service,
	projectSvc *appprojects.Service,
	insightSvc *appinsights.Service,
	coordinator *appbatch.Coordinator,
	health map[string]middleware.HealthChecker,
	log zerolog.Logger,
) http.Handler {
	r := &Router{
		ingestSvc:   ingestSvc,
		projectSvc:  projectSvc,
		insightSvc:  insightSvc,
		coordinator: coordinator,
		log:         log,
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(health))
	mux.Get("/health/ready", middleware.ReadinessHandler)
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/sources", r.wrap(r.handleRegisterSource))
		rt.Get("/sources", r.wrap(r.handleListSources))

		rt.Post("/projects", r.wrap(r.handleCreateProject))
		rt.Get("/projects/{id}", r.wrap(r.handleGetProject))
		rt.Get("/projects/{id}/dashboard", r.wrap(r.handleDashboard))

		rt.Get("/projects/{id}/thematics", r.wrap(r.handleListThemes))
		rt.Post("/projects/{id}/thematics", r.wrap(r.handleAddTheme))
		rt.Post("/projects/{id}/thematics/generate", r.wrap(r.handleGenerateThemes))
		rt.Delete("/thematics/{id}", r.wrap(r.handleDeleteTheme))

		rt.Get("/media", r.wrap(r.handleListMedia))
		rt.Get("/media/latest", r.wrap(r.handleListMedia))
		rt.Get("/media/progress", r.wrap(r.handleLatestProgress))
		rt.Get("/media/{id}", r.wrap(r.handleGetMedia))
		rt.Get("/batches/{id}/progress", r.wrap(r.handleBatchProgress))
		rt.Get("/dashboard/stats", r.wrap(r.handleGlobalStats))

		rt.Post("/projects/{id}/insights/generate", r.wrap(r.handleGenerateInsight))
		rt.Get("/projects/{id}/insights/latest", r.wrap(r.handleLatestInsight))
		rt.Get("/projects/{id}/media/analysed", r.wrap(r.handleAnalysedMedia))

		rt.Group(func(g chi.Router) {
			g.Use(middleware.RateLimitMiddleware(10, 1))
			g.Post("/scrape/{id}", r.wrap(r.handleScrape))
			g.Post("/media/process/all", r.wrap(r.handleProcessAll))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client input errors so wrap can map them to 400.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			if errors.As(err, &br) {
				http.Error(w, br.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/sources
// Body: {"name": "...", "feed_url": "https://..."}
func (r *Router) handleRegisterSource(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name    string `json:"name"`
		FeedURL string `json:"feed_url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateFeedURL(body.FeedURL); err != nil {
		return badRequest{err}
	}
	src, err := r.ingestSvc.RegisterSource(req.Context(), middleware.SanitizeString(body.Name), body.FeedURL)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, src)
}

// GET /v1/sources
func (r *Router) handleListSources(w http.ResponseWriter, req *http.Request) error {
	list, err := r.ingestSvc.ListSources(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /v1/scrape/{id}
// Insight snapshots for the subscribed projects refresh in the background;
// one project failing does not block the others.
func (r *Router) handleScrape(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	result, err := r.ingestSvc.ScrapeSource(req.Context(), id)
	if err != nil {
		return err
	}
	middleware.IncrementScrapes()
	middleware.AddItemsIngested(result.NewItems)

	if result.NewItems > 0 {
		go func(projectIDs []string) {
			ctx := context.Background()
			for _, pid := range projectIDs {
				if _, err := r.insightSvc.Generate(ctx, pid); err != nil {
					r.log.Warn().Err(err).Str("project", pid).Msg("post-scrape insight refresh failed")
					continue
				}
				middleware.IncrementInsights()
			}
		}(result.ProjectIDs)
	}

	return writeJSON(w, http.StatusOK, result)
}

// POST /v1/projects
func (r *Router) handleCreateProject(w http.ResponseWriter, req *http.Request) error {
	var cmd appprojects.CreateProjectCommand
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		return badRequest{err}
	}
	cmd.Title = middleware.SanitizeString(cmd.Title)
	if cmd.Title == "" {
		return badRequest{fmt.Errorf("title is required")}
	}

	p, err := r.projectSvc.CreateProject(req.Context(), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, p)
}

// GET /v1/projects/{id}
func (r *Router) handleGetProject(w http.ResponseWriter, req *http.Request) error {
	p, err := r.projectSvc.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

// GET /v1/projects/{id}/dashboard
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	d, err := r.projectSvc.Dashboard(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, d)
}

// GET /v1/projects/{id}/thematics
func (r *Router) handleListThemes(w http.ResponseWriter, req *http.Request) error {
	list, err := r.projectSvc.ListThemes(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /v1/projects/{id}/thematics
func (r *Router) handleAddTheme(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if body.Name == "" {
		return badRequest{fmt.Errorf("name is required")}
	}
	area, err := r.projectSvc.AddTheme(req.Context(), chi.URLParam(req, "id"), body.Name, body.Description)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, area)
}

// POST /v1/projects/{id}/thematics/generate
func (r *Router) handleGenerateThemes(w http.ResponseWriter, req *http.Request) error {
	list, err := r.projectSvc.GenerateThemes(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, list)
}

// DELETE /v1/thematics/{id}
func (r *Router) handleDeleteTheme(w http.ResponseWriter, req *http.Request) error {
	if err := r.projectSvc.DeleteTheme(req.Context(), chi.URLParam(req, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/media?limit=20 (also serves /v1/media/latest)
func (r *Router) handleListMedia(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.ingestSvc.ListItems(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/media/{id}
func (r *Router) handleGetMedia(w http.ResponseWriter, req *http.Request) error {
	item, err := r.ingestSvc.GetItem(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

// GET /v1/dashboard/stats
func (r *Router) handleGlobalStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.ingestSvc.Stats(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stats)
}

// POST /v1/media/process/all
// Classification runs in the background; the response carries the batch id
// to poll progress with.
func (r *Router) handleProcessAll(w http.ResponseWriter, req *http.Request) error {
	progress, err := r.coordinator.StartAll(req.Context())
	if err != nil {
		return err
	}
	middleware.IncrementBatches()

	return writeJSON(w, http.StatusAccepted, progress)
}

// GET /v1/media/progress
func (r *Router) handleLatestProgress(w http.ResponseWriter, req *http.Request) error {
	progress, ok := r.coordinator.Latest()
	if !ok {
		return sql.ErrNoRows
	}
	return writeJSON(w, http.StatusOK, progress)
}

// GET /v1/batches/{id}/progress
func (r *Router) handleBatchProgress(w http.ResponseWriter, req *http.Request) error {
	progress, ok := r.coordinator.Progress(chi.URLParam(req, "id"))
	if !ok {
		return sql.ErrNoRows
	}
	return writeJSON(w, http.StatusOK, progress)
}

// POST /v1/projects/{id}/insights/generate
func (r *Router) handleGenerateInsight(w http.ResponseWriter, req *http.Request) error {
	ins, err := r.insightSvc.Generate(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	middleware.IncrementInsights()

	return writeJSON(w, http.StatusCreated, ins)
}

// GET /v1/projects/{id}/insights/latest
func (r *Router) handleLatestInsight(w http.ResponseWriter, req *http.Request) error {
	ins, err := r.insightSvc.Latest(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	if ins == nil {
		return sql.ErrNoRows
	}
	return writeJSON(w, http.StatusOK, ins)
}

// GET /v1/projects/{id}/media/analysed
func (r *Router) handleAnalysedMedia(w http.ResponseWriter, req *http.Request) error {
	list, err := r.insightSvc.AnalysedMedia(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
