package retention

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadloom/pkg/config"
	"threadloom/pkg/journal"
	"threadloom/pkg/models"
	"threadloom/pkg/state"
)

func testEff(t *testing.T, maxAgeDays int) config.EffectiveConfigResult {
	t.Helper()
	dataPath := t.TempDir()
	require.NoError(t, state.EnsureStateDirs(dataPath))
	cfg := &config.Config{}
	cfg.Retention.Enabled = true
	cfg.Retention.MaxAgeDays = maxAgeDays
	return config.EffectiveConfigResult{
		Config:      cfg,
		JournalPath: dataPath,
	}
}

func TestRunImmediateRequiresRegistration(t *testing.T) {
	storedEff = nil
	assert.Error(t, RunImmediate())
}

func TestRunImmediateSweepsAndReports(t *testing.T) {
	eff := testEff(t, 7)
	require.NoError(t, journal.Open(state.JournalDir(eff.JournalPath)))
	defer journal.Close()
	require.NoError(t, journal.RecordDelta("thr-1", models.InvalidDelta("e", "raw")))

	SetEffectiveConfig(eff)
	require.NoError(t, RunImmediate())

	// Fresh entries are newer than the cutoff and survive.
	entries, err := journal.ListEntries("thr-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// A run report lands under state/retention.
	reports, err := os.ReadDir(state.RetentionDir(eff.JournalPath))
	require.NoError(t, err)
	assert.NotEmpty(t, reports)
}

func TestStartDisabledIsNoop(t *testing.T) {
	eff := testEff(t, 7)
	eff.Config.Retention.Enabled = false
	cancel, err := Start(context.Background(), eff)
	require.NoError(t, err)
	cancel()
}

func TestStartRejectsInvalidCron(t *testing.T) {
	eff := testEff(t, 7)
	eff.Config.Retention.Cron = "not a cron"
	_, err := Start(context.Background(), eff)
	assert.Error(t, err)
}
