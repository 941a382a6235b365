package config

import (
	"net"
	"os"
	"strconv"
	"strings"
)

// EffectiveConfigResult is the merged view of file, env and defaults that
// the rest of the app consumes.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	// JournalPath is the data root. The pebble journal, audit logs and
	// retention reports live in subdirectories under it.
	JournalPath string
	ProxyURL    string
	Source      string // "config", "env" or "defaults"
}

func parseList(v string) []string {
	if v == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// LoadEnvOverrides applies THREADLOOM_* environment overrides onto cfg and
// reports whether any env var was consulted.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("THREADLOOM_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		}
	}
	if v := os.Getenv("THREADLOOM_PROXY_URL"); v != "" {
		envUsed = true
		cfg.Proxy.URL = v
	}
	if v := os.Getenv("THREADLOOM_PROJECT_KEY"); v != "" {
		envUsed = true
		cfg.Proxy.ProjectKey = v
	}
	if v := os.Getenv("THREADLOOM_JOURNAL_PATH"); v != "" {
		envUsed = true
		cfg.Journal.Path = v
	}
	if v := os.Getenv("THREADLOOM_BACKEND_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Backend = parseList(v)
	}
	if v := os.Getenv("THREADLOOM_FRONTEND_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Frontend = parseList(v)
	}
	if v := os.Getenv("THREADLOOM_ADMIN_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Admin = parseList(v)
	}
	if v := os.Getenv("THREADLOOM_ALLOW_UNAUTH"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.AllowUnauth = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("THREADLOOM_RETENTION_CRON"); v != "" {
		envUsed = true
		cfg.Retention.Cron = v
		cfg.Retention.Enabled = true
	}
	return envUsed
}

// LoadEffective loads the config file (when present), layers env overrides
// on top and fills defaults. A missing file is not fatal; env-only and
// defaults-only configurations are valid.
func LoadEffective(cfgPath string) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult
	cfg, err := Load(cfgPath)
	fromFile := err == nil
	if !fromFile {
		if !strings.Contains(err.Error(), "config file not found") {
			return res, err
		}
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)

	switch {
	case fromFile:
		res.Source = "config"
	case envUsed:
		res.Source = "env"
	default:
		res.Source = "defaults"
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "./.threadloom"
	}
	res.Config = cfg
	res.Addr = cfg.Addr()
	res.JournalPath = cfg.Journal.Path
	res.ProxyURL = cfg.Proxy.URL
	return res, nil
}
