package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"

	"threadloom/pkg/config"
	"threadloom/pkg/journal"
	"threadloom/pkg/logger"
	"threadloom/pkg/state"
)

var storedEff *config.EffectiveConfigResult

// SetEffectiveConfig stores the effective config so tests (or admin
// triggers) can invoke retention runs on-demand.
func SetEffectiveConfig(eff config.EffectiveConfigResult) {
	storedEff = &eff
}

// RunImmediate triggers a single retention run using the stored effective
// config. Returns an error if no effective config was registered.
func RunImmediate() error {
	if storedEff == nil {
		return fmt.Errorf("no effective config registered for retention run")
	}
	retentionPath := state.RetentionDir(storedEff.JournalPath)
	return runOnce(context.Background(), *storedEff, retentionPath)
}

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult) (context.CancelFunc, error) {
	ret := eff.Config.Retention

	if !ret.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	retentionPath := state.RetentionDir(eff.JournalPath)
	if err := os.MkdirAll(retentionPath, 0o700); err != nil {
		logger.Error("retention_path_create_failed", "path", retentionPath, "error", err)
		return nil, err
	}

	// map empty cron to default daily @02:00
	cronExpr := ret.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", ret.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", ret.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "max_age_days", ret.MaxAgeDays, "path", retentionPath)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, eff, retentionPath, cronExpr)

	logger.Info("retention_scheduler_started", "path", retentionPath)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, eff config.EffectiveConfigResult, retentionPath, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}

		select {
		case <-time.After(wait):
			if err := runOnce(ctx, eff, retentionPath); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// runReport records the outcome of a single sweep for operators.
type runReport struct {
	Time       string `json:"time"`
	Cutoff     string `json:"cutoff"`
	MaxAgeDays int    `json:"max_age_days"`
	Swept      int    `json:"swept"`
	Error      string `json:"error,omitempty"`
}

// runOnce sweeps journal entries older than the configured max age and
// writes a run report under the retention path.
func runOnce(ctx context.Context, eff config.EffectiveConfigResult, retentionPath string) error {
	maxAge := eff.Config.Retention.MaxAgeDays
	if maxAge <= 0 {
		logger.Info("retention_run_skipped", "reason", "max_age_days not set")
		return nil
	}
	if !journal.Ready() {
		return fmt.Errorf("journal not open")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -maxAge)
	swept, err := journal.SweepBefore(cutoff)

	rep := runReport{
		Time:       time.Now().UTC().Format(time.RFC3339),
		Cutoff:     cutoff.Format(time.RFC3339),
		MaxAgeDays: maxAge,
		Swept:      swept,
	}
	if err != nil {
		rep.Error = err.Error()
	}
	writeReport(retentionPath, rep)

	if err != nil {
		return err
	}
	if logger.Audit != nil {
		logger.Audit.Info("retention_run_complete", "swept", swept, "cutoff", rep.Cutoff)
	} else {
		logger.Info("retention_run_complete", "swept", swept, "cutoff", rep.Cutoff)
	}
	return nil
}

func writeReport(retentionPath string, rep runReport) {
	name := fmt.Sprintf("run-%d.json", time.Now().UnixNano())
	raw, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(retentionPath, name), raw, 0o600); err != nil {
		logger.Warn("retention_report_write_failed", "error", err)
	}
}
