// Package app assembles the application: database pool, Genkit, stores,
// the indexing pipeline, the tool dispatcher and the orchestrator.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurami/origin/internal/agent"
	"github.com/aurami/origin/internal/config"
	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/index"
	"github.com/aurami/origin/internal/search"
	"github.com/aurami/origin/internal/session"
	"github.com/aurami/origin/internal/tools"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	Store    *family.Store
	Sessions *session.Store
	Indexer  *index.Indexer
	Engine   *search.Engine

	Dispatcher   *tools.Dispatcher
	Orchestrator *agent.Orchestrator
}

// Close releases held resources.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Info("database pool closed")
	}
	return nil
}
