package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"threadloom/internal/app"
	"threadloom/internal/retention"
	"threadloom/pkg/config"
	"threadloom/pkg/logger"
	"threadloom/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, proxyVal, journalVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	eff, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// explicit flags win over env/config
	if setFlags["addr"] {
		eff.Addr = addrVal
	}
	if setFlags["proxy"] {
		eff.ProxyURL = proxyVal
		eff.Config.Proxy.URL = proxyVal
	}
	if setFlags["journal"] {
		eff.JournalPath = journalVal
		eff.Config.Journal.Path = journalVal
	}

	if lv := eff.Config.Logging.Level; lv != "" {
		logger.InitWithLevel(lv)
	} else {
		logger.Init()
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, eff.JournalPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	retention.SetEffectiveConfig(eff)
	stopRetention, err := retention.Start(ctx, eff)
	if err != nil {
		shutdown.Abort("retention startup failed", err, eff.JournalPath, 0)
	}
	defer stopRetention()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_exit", "error", err)
		shutdown.Abort("server failed", err, eff.JournalPath, 0)
	}
	logger.Info("shutdown_complete")
}
