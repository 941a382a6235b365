package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"threadloom/pkg/config"
	"threadloom/pkg/journal"
	"threadloom/pkg/logger"
	"threadloom/pkg/state"
	"threadloom/pkg/threadstore"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	proxy  *threadstore.Client
	srv    *http.Server
	cancel context.CancelFunc
}

// New initializes resources that do not require a running context (state
// dirs, journal, proxy client). It does not start the HTTP server; call Run
// to start it and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := state.EnsureStateDirs(eff.JournalPath); err != nil {
		return nil, fmt.Errorf("failed to prepare state dirs under %s: %w", eff.JournalPath, err)
	}
	if err := logger.AttachAuditFileSink(state.AuditDir(eff.JournalPath)); err != nil {
		logger.Warn("audit_sink_unavailable", "error", err)
	}

	if err := journal.Open(state.JournalDir(eff.JournalPath)); err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", state.JournalDir(eff.JournalPath), err)
	}

	proxy := threadstore.NewClient(eff.ProxyURL, eff.Config.Proxy.ProjectKey)

	return &App{eff: eff, version: version, commit: commit, buildDate: buildDate, proxy: proxy}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or a fatal
// server error occurs. The journal is closed on the way out.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Warn("journal_close_failed", "error", err)
		}
	}()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdownHTTP()
		return nil
	case err := <-errCh:
		return err
	}
}

// shutdownHTTP drains in-flight requests with a bounded grace period.
func (a *App) shutdownHTTP() {
	if a.srv == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.Background(), httpShutdownGrace)
	defer cancel()
	if err := a.srv.Shutdown(sctx); err != nil {
		logger.Warn("http_shutdown_incomplete", "error", err)
	}
}
