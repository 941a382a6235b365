package app

import (
	"fmt"
	"net/url"
	"path/filepath"

	"threadloom/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light so
// callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.JournalPath == "" {
		return fmt.Errorf("data path is empty: set --journal flag, THREADLOOM_JOURNAL_PATH env, or journal.path in config")
	}

	if eff.ProxyURL == "" {
		return fmt.Errorf("proxy URL is empty: set --proxy flag, THREADLOOM_PROXY_URL env, or proxy.url in config")
	}
	u, err := url.Parse(eff.ProxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("proxy URL is not a valid absolute URL: %q", eff.ProxyURL)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("proxy URL scheme must be http or https, got %q", u.Scheme)
	}

	// A project key scopes proxy calls to a workspace; when set it must be an
	// absolute filesystem path.
	if pk := eff.Config.Proxy.ProjectKey; pk != "" && !filepath.IsAbs(pk) {
		return fmt.Errorf("proxy project key must be an absolute path, got %q", pk)
	}

	if ret := eff.Config.Retention; ret.Enabled && ret.MaxAgeDays < 0 {
		return fmt.Errorf("retention.max_age_days must not be negative")
	}

	return nil
}
