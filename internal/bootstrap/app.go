package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"zipduck-backend/internal/ai/gemini"
	"zipduck-backend/internal/analysis"
	"zipduck-backend/internal/documents"
	"zipduck-backend/internal/eligibility"
	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
	"zipduck-backend/internal/reconcile"
	"zipduck-backend/internal/registry"
	"zipduck-backend/internal/resilience"
	"zipduck-backend/internal/shared/config"
	"zipduck-backend/internal/shared/server"
	"zipduck-backend/internal/shared/storage/db"
	"zipduck-backend/internal/shared/storage/object"
	localstore "zipduck-backend/internal/shared/storage/object/local"
	"zipduck-backend/internal/workqueue"
)

// App holds the wired dependency graph.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.ObjectStore
	Pool   *workqueue.Pool

	ProfilesRepo  profiles.Repo
	OffersRepo    offers.Repo
	DocumentsRepo documents.Repo
	OutcomesRepo  analysis.Repo

	ProfilesService    *profiles.Service
	OffersService      *offers.Service
	EligibilityService *eligibility.Service
	DocumentsService   *documents.Service
	AnalysisService    *analysis.Service

	Collector *registry.Collector
	Sweeper   *registry.Sweeper
	Scheduler *registry.Scheduler
}

// Build prepares the full dependency graph and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  buildRedis(cfg),
		Store:  localstore.New(cfg.LocalStoreDir),
		Pool:   workqueue.New(cfg.AnalysisWorkers, cfg.AnalysisQueue),
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		DB:                 app.DB,
		ProfileHandler:     profiles.NewHandler(app.ProfilesService),
		OfferHandler:       offers.NewHandler(app.OffersService),
		EligibilityHandler: eligibility.NewHandler(app.EligibilityService),
		DocumentHandler:    documents.NewHandler(app.DocumentsService),
		AnalysisHandler:    analysis.NewHandler(app.AnalysisService),
	})

	return app, nil
}

// Close releases resources. The pool is drained first so in-flight analyses
// can still reach the database.
func (a *App) Close(ctx context.Context) {
	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			log.Printf("bootstrap: pool shutdown: %v", err)
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildRedis(cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Printf("bootstrap: REDIS_ADDR empty; using in-memory result cache")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
		app.OffersRepo = &offers.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.OutcomesRepo = &analysis.PGRepo{DB: app.DB}
	} else {
		app.ProfilesRepo = profiles.NewMemoryRepo()
		app.OffersRepo = offers.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.OutcomesRepo = analysis.NewMemoryRepo()
	}

	var cache analysis.ResultCache
	if app.Redis != nil {
		cache = &analysis.RedisCache{Client: app.Redis}
	} else {
		cache = analysis.NewMemoryCache()
	}

	aiClient, modelID, err := buildAI(ctx, app.Config)
	if err != nil {
		return err
	}

	analysisSvc := &analysis.Service{
		Documents:   app.DocumentsRepo,
		Profiles:    app.ProfilesRepo,
		Outcomes:    app.OutcomesRepo,
		Cache:       cache,
		Store:       app.Store,
		OCR:         &ocr.Service{Client: aiClient},
		Extractor:   extraction.NewExtractor(aiClient),
		Reconciler:  &reconcile.Reconciler{Offers: app.OffersRepo, Matcher: reconcile.NameRegionMatcher{}},
		Pool:        app.Pool,
		OCRCall:     resilience.New[string]("ocr").WithTimeout(2 * time.Minute),
		ExtractCall: resilience.New[extraction.Criteria]("extraction").WithTimeout(2 * time.Minute),
		ModelID:     modelID,
	}

	app.ProfilesService = &profiles.Service{Repo: app.ProfilesRepo}
	app.OffersService = &offers.Service{Repo: app.OffersRepo}
	app.EligibilityService = &eligibility.Service{Profiles: app.ProfilesRepo, Offers: app.OffersRepo}
	app.AnalysisService = analysisSvc
	app.DocumentsService = &documents.Service{
		Store:   app.Store,
		Repo:    app.DocumentsRepo,
		Starter: analysisSvc,
	}

	app.Sweeper = &registry.Sweeper{Offers: app.OffersRepo}
	app.Scheduler = &registry.Scheduler{
		Sweeper:    app.Sweeper,
		SweepEvery: app.Config.SweepEvery,
	}
	if feed := buildFeed(app.Config); feed != nil {
		app.Collector = registry.NewCollector(app.OffersRepo, feed)
		app.Scheduler.Collector = app.Collector
		app.Scheduler.CollectEvery = app.Config.CollectEvery
	}

	return nil
}

// aiCapability is the union of what the pipeline needs from the model
// provider. The Gemini client satisfies all of it.
type aiCapability interface {
	ocr.Client
	extraction.Generator
}

func buildAI(ctx context.Context, cfg config.Config) (aiCapability, string, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: GEMINI_API_KEY empty; document analysis will fail until configured")
			return placeholderAI{}, "none", nil
		}
		return nil, "", fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, "", fmt.Errorf("gemini client: %w", err)
	}
	return client, client.Model(), nil
}

// buildFeed returns nil until a concrete registry feed is configured. The
// scheduler simply skips collection without one.
func buildFeed(cfg config.Config) registry.FeedClient {
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// placeholderAI stands in when no model provider is configured.
type placeholderAI struct{}

var errAINotConfigured = errors.New("gemini client not configured")

func (placeholderAI) DetectImageContent(ctx context.Context, data []byte, mimeType string) (bool, error) {
	return false, errAINotConfigured
}

func (placeholderAI) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	return "", errAINotConfigured
}

func (placeholderAI) GenerateContent(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	return "", errAINotConfigured
}
