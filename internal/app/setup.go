package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurami/origin/db"
	"github.com/aurami/origin/internal/agent"
	"github.com/aurami/origin/internal/config"
	"github.com/aurami/origin/internal/database"
	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/index"
	"github.com/aurami/origin/internal/search"
	"github.com/aurami/origin/internal/session"
	"github.com/aurami/origin/internal/tools"
)

// Setup creates and initializes the application. Call Close on the returned
// App to release resources.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := providePool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	a.Store = family.NewStore(pool, logger)
	a.Sessions = session.NewStore(pool, logger)
	a.Indexer = index.NewIndexer(pool, embedder, logger)
	a.Engine = search.NewEngine(pool, embedder, a.Store, logger)

	// The orchestrator and the tool handler reference each other: the
	// handler calls back into the model for biography drafting. Wire the
	// handler first, install the orchestrator as its writer after.
	handler := tools.NewHandler(a.Store, a.Engine, a.Indexer, nil, logger)
	a.Dispatcher = tools.NewDispatcher(a.Store, handler, logger)
	a.Orchestrator = agent.New(g, a.Dispatcher, a.Sessions, a.Store, agent.Config{
		ModelName:    cfg.ModelName,
		MaxRounds:    cfg.MaxRounds,
		HistoryLimit: cfg.HistoryLimit,
	}, logger)
	handler.SetWriter(a.Orchestrator)

	tools.RegisterTools(g, a.Dispatcher)

	return a, nil
}

// providePool runs migrations, then opens the connection pool with pgvector
// types registered.
func providePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return g, nil
}

func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}
