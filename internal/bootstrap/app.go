package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/domains"
	"rivalscan-backend/internal/fetch"
	"rivalscan-backend/internal/keywordintel/dataforseo"
	"rivalscan-backend/internal/llm"
	openai "rivalscan-backend/internal/llm/openai"
	"rivalscan-backend/internal/perfaudit/pagespeed"
	"rivalscan-backend/internal/profile"
	"rivalscan-backend/internal/runs"
	"rivalscan-backend/internal/shared/config"
	"rivalscan-backend/internal/shared/server"
	"rivalscan-backend/internal/shared/storage/db"
)

const (
	defaultFetchTimeout   = 15 * time.Second
	memoryJanitorInterval = 10 * time.Minute
)

// App holds shared dependencies built once at startup.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	RunsRepo    runs.Repo
	RunsService *runs.Service
	RunsHandler *runs.Handler

	// StopJanitor is non-nil when the in-memory repo is in use.
	StopJanitor func()
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	var repo runs.Repo
	if sqlDB != nil {
		repo = &runs.PGRepo{DB: sqlDB}
	} else {
		memRepo := runs.NewMemoryRepo()
		app.StopJanitor = memRepo.StartJanitor(memoryJanitorInterval)
		repo = memRepo
	}
	app.RunsRepo = repo

	fetcher := buildFetcher(cfg)
	llmClient := llm.WithRetry(openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel))
	keywords := dataforseo.NewClient(cfg.DataForSEOLogin, cfg.DataForSEOPassword)
	perf := pagespeed.NewClient(cfg.PageSpeedAPIKey)

	app.RunsService = &runs.Service{
		Repo:     repo,
		Fetcher:  fetcher,
		Profiler: &profile.Profiler{LLM: llmClient},
		Resolver: &competitors.Resolver{
			LLM:       llmClient,
			Keywords:  keywords,
			Validator: domains.NewValidator(),
		},
		Pipeline: &analysis.Pipeline{
			Fetcher:  fetcher,
			Perf:     perf,
			Keywords: keywords,
			LLM:      llmClient,
		},
		Ledger: costs.NewLedger(),
	}
	app.RunsHandler = runs.NewHandler(app.RunsService)

	app.Router = server.NewRouter(cfg, app.RunsHandler)
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory run store")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory run store: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildFetcher(cfg config.Config) fetch.Fetcher {
	timeout, err := time.ParseDuration(cfg.FetchTimeout)
	if err != nil || timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	plain := fetch.NewHTTPFetcher(timeout)
	if strings.TrimSpace(cfg.ChromePath) == "" {
		return fetch.NewFallback(nil, plain)
	}
	return fetch.NewFallback(fetch.NewChromeFetcher(cfg.ChromePath, timeout), plain)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
