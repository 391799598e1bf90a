package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/habarihub/mediamon/internal/application"
	appbatch "github.com/habarihub/mediamon/internal/application/batch"
	appclassify "github.com/habarihub/mediamon/internal/application/classify"
	appingest "github.com/habarihub/mediamon/internal/application/ingest"
	appinsights "github.com/habarihub/mediamon/internal/application/insights"
	appprojects "github.com/habarihub/mediamon/internal/application/projects"
	"github.com/habarihub/mediamon/internal/config"
	"github.com/habarihub/mediamon/internal/domain/analysis"
	domaininsights "github.com/habarihub/mediamon/internal/domain/insights"
	"github.com/habarihub/mediamon/internal/domain/media"
	domainprojects "github.com/habarihub/mediamon/internal/domain/projects"
	openaiClient "github.com/habarihub/mediamon/internal/infra/ai/openai"
	mysqlp "github.com/habarihub/mediamon/internal/infra/db/mysql"
	postgresp "github.com/habarihub/mediamon/internal/infra/db/postgres"
	"github.com/habarihub/mediamon/internal/infra/feed"
	"github.com/habarihub/mediamon/internal/infra/httpserver"
	minioStore "github.com/habarihub/mediamon/internal/infra/storage"
	"github.com/habarihub/mediamon/internal/middleware"
)

// meteredProcessor wraps the classifier so batch runs feed the counters
// exposed on /metrics.
type meteredProcessor struct {
	inner appbatch.Processor
}

func (m meteredProcessor) ProcessItem(ctx context.Context, itemID string) error {
	err := m.inner.ProcessItem(ctx, itemID)
	if err != nil {
		middleware.IncrementItemsFailed()
		return err
	}
	middleware.IncrementItemsProcessed()
	return nil
}

// repos bundles the persistence ports so both drivers wire the same way.
type repos struct {
	Sources  media.SourceRepository
	Items    media.ItemRepository
	Links    media.LinkRepository
	Projects domainprojects.Repository
	Themes   domainprojects.ThematicAreaRepository
	Analyses analysis.Repository
	Insights domaininsights.Repository
}

func main() {
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx := context.Background()

	var db *sql.DB
	var rp repos
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect")
		}
		rp = repos{
			Sources:  postgresp.NewSourceRepository(db),
			Items:    postgresp.NewMediaRepository(db),
			Links:    postgresp.NewLinkRepository(db),
			Projects: postgresp.NewProjectRepository(db),
			Themes:   postgresp.NewThematicAreaRepository(db),
			Analyses: postgresp.NewAnalysisRepository(db),
			Insights: postgresp.NewInsightRepository(db),
		}
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect")
		}
		rp = repos{
			Sources:  mysqlp.NewSourceRepository(db),
			Items:    mysqlp.NewMediaRepository(db),
			Links:    mysqlp.NewLinkRepository(db),
			Projects: mysqlp.NewProjectRepository(db),
			Themes:   mysqlp.NewThematicAreaRepository(db),
			Analyses: mysqlp.NewAnalysisRepository(db),
			Insights: mysqlp.NewInsightRepository(db),
		}
	}
	defer db.Close()

	health := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	var archive media.ArchiveStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("minio init")
		}
		archive = store
		health["storage"] = &middleware.PingHealthChecker{Ping: store.Ping}
	}

	ai := openaiClient.NewClient(
		cfg.AI.APIKey,
		cfg.AI.BaseURL,
		cfg.AI.Model,
		cfg.AI.EmbeddingModel,
		cfg.AI.ChatTimeout.Std(),
		cfg.AI.EmbedTimeout.Std(),
	)

	ingestSvc := &appingest.Service{
		Sources:   rp.Sources,
		Items:     rp.Items,
		Links:     rp.Links,
		Projects:  rp.Projects,
		Fetcher:   feed.NewFetcher(cfg.Scraper.FeedTimeout.Std(), cfg.Scraper.UserAgent),
		Extractor: feed.NewExtractor(cfg.Scraper.FetchTimeout.Std(), cfg.Scraper.UserAgent),
		Archive:   archive,
		Analyses:  rp.Analyses,
		Clock:     application.SystemClock{},
		Log:       log,
	}

	classifySvc := &appclassify.Service{
		Items:    rp.Items,
		Links:    rp.Links,
		Projects: rp.Projects,
		Themes:   rp.Themes,
		Analyses: rp.Analyses,
		Chat:     ai,
		Embedder: ai,
		Clock:    application.SystemClock{},
		Log:      log,

		SimilarityThreshold: cfg.Classification.SimilarityThreshold,
		RequireThemeMatch:   cfg.Classification.RequireThemeMatch,
		PreviewChars:        cfg.Classification.BodyPreviewChars,
		MinBodyChars:        cfg.Classification.MinBodyChars,
	}

	insightSvc := &appinsights.Service{
		Projects: rp.Projects,
		Analyses: rp.Analyses,
		Insights: rp.Insights,
		Chat:     ai,
		Clock:    application.SystemClock{},
		Log:      log,

		ExcerptChars: cfg.Insights.ArticleExcerptChars,
	}

	projectSvc := &appprojects.Service{
		Projects: rp.Projects,
		Themes:   rp.Themes,
		Chat:     ai,
		Clock:    application.SystemClock{},
		Log:      log,
	}

	coordinator := appbatch.NewCoordinator(rp.Items, meteredProcessor{inner: classifySvc}, cfg.Batch.Workers, log)

	handler := httpserver.NewRouter(ingestSvc, projectSvc, insightSvc, coordinator, health, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
