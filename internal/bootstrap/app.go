package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cv-backend/internal/analyses"
	"cv-backend/internal/documents"
	"cv-backend/internal/extract"
	"cv-backend/internal/infer"
	"cv-backend/internal/llm"
	"cv-backend/internal/llm/gemini"
	"cv-backend/internal/llm/openai"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/server"
	"cv-backend/internal/shared/storage/db"
	"cv-backend/internal/shared/storage/object"
	localstore "cv-backend/internal/shared/storage/object/local"
	s3store "cv-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Gorm            *gorm.DB
	Store           object.ObjectStore
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	AIClient        llm.Client
	AIStatus        string

	closers []func() error
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	repo, err := app.buildRepo(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	aiClient, aiStatus := app.buildAI(ctx)

	app.Store = store
	app.AnalysesRepo = repo
	app.AIClient = aiClient
	app.AIStatus = aiStatus
	app.AnalysesService = &analyses.Service{
		Repo:       repo,
		Documents:  &documents.Service{Store: store},
		Extractor:  extract.New(),
		Inferencer: infer.New(),
		LLM:        aiClient,
		AIStatus:   aiStatus,
		AITimeout:  cfg.AITimeout,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
	})

	log.Printf("bootstrap: env=%s store=%s db=%s ai=%s", cfg.Env, cfg.ObjectStoreType, dbLabel(app), aiStatusLabel(aiClient, aiStatus))
	return app, nil
}

// Close releases database pools and provider clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildRepo(ctx context.Context) (analyses.Repo, error) {
	cfg := a.Config
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return analyses.NewMemoryRepo(), nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	repo, err := a.connectRepo(ctx)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database setup failed; using in-memory repository: %v", err)
			return analyses.NewMemoryRepo(), nil
		}
		return nil, err
	}
	return repo, nil
}

func (a *App) connectRepo(ctx context.Context) (analyses.Repo, error) {
	cfg := a.Config
	opts := db.OptionsFromEnv(db.DefaultServerOptions())

	if cfg.DatabaseDriver == "mysql" {
		gdb, err := db.ConnectMySQL(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		repo := &analyses.GormRepo{DB: gdb}
		if err := repo.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		a.Gorm = gdb
		return repo, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sqlDB.Close)
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.DB = sqlDB
	return &analyses.PGRepo{DB: sqlDB}, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildAI returns the configured provider, or nil with the reason it is unusable.
func (a *App) buildAI(ctx context.Context) (llm.Client, string) {
	cfg := a.Config
	switch cfg.AIProvider {
	case "openai":
		key := strings.TrimSpace(cfg.OpenAIAPIKey)
		if key == "" {
			return nil, analyses.AIStatusNotConfigured
		}
		if !openai.ValidKeyFormat(key) {
			log.Printf("bootstrap: OPENAI_API_KEY has an unexpected format; using native extraction")
			return nil, analyses.AIStatusInvalidKeyFormat
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:  key,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.AITimeout,
		})
		if err != nil {
			log.Printf("bootstrap: openai client init failed: %v", err)
			return nil, analyses.AIStatusNotConfigured
		}
		return client, analyses.AIStatusConfigured
	case "gemini":
		key := strings.TrimSpace(cfg.GeminiAPIKey)
		if key == "" {
			return nil, analyses.AIStatusNotConfigured
		}
		client, err := gemini.NewClient(ctx, key, cfg.GeminiModel)
		if err != nil {
			log.Printf("bootstrap: gemini client init failed: %v", err)
			return nil, analyses.AIStatusNotConfigured
		}
		a.closers = append(a.closers, client.Close)
		return client, analyses.AIStatusConfigured
	default:
		return nil, analyses.AIStatusNotConfigured
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func dbLabel(a *App) string {
	switch {
	case a.DB != nil:
		return "postgres"
	case a.Gorm != nil:
		return "mysql"
	default:
		return "memory"
	}
}

func aiStatusLabel(client llm.Client, status string) string {
	if client != nil {
		return client.Name()
	}
	return status
}
