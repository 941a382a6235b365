package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the yaml-file configuration. Env vars and command-line flags
// are layered on top by LoadEffective; flags win over env, env wins over
// file.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Proxy struct {
		// URL of the Thread Store proxy RPC endpoint.
		URL string `yaml:"url"`
		// ProjectKey must be an absolute path when set.
		ProjectKey string `yaml:"project_key"`
	} `yaml:"proxy"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Stream struct {
		PollIntervalMS int `yaml:"poll_interval_ms"`
		BatchMax       int `yaml:"batch_max"`
		RetryMS        int `yaml:"retry_ms"`
	} `yaml:"stream"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		APIKeys struct {
			Backend     []string `yaml:"backend"`
			Frontend    []string `yaml:"frontend"`
			Admin       []string `yaml:"admin"`
			AllowUnauth bool     `yaml:"allow_unauth"`
		} `yaml:"api_keys"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Retention struct {
		Enabled    bool   `yaml:"enabled"`
		Cron       string `yaml:"cron"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"retention"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads a config file. A missing file is reported as such so callers
// can fall back to env-only configuration.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map of which flags were explicitly set.
func ParseCommandFlags() (addr, proxyURL, journalPath, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	proxyPtr := flag.String("proxy", "", "Thread Store proxy URL")
	journalPtr := flag.String("journal", "./.threadloom", "Data root for journal and runtime state")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *proxyPtr, *journalPtr, *cfgPtr, setFlags
}

// ResolveConfigPath picks the config path: an explicit flag wins, then the
// THREADLOOM_CONFIG env var, then the flag default.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet {
		return flagVal
	}
	if v := os.Getenv("THREADLOOM_CONFIG"); v != "" {
		return v
	}
	return flagVal
}
