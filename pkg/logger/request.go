package logger

import (
	"net/http"
	"strings"
)

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"x-api-key":     {},
	"last-event-id": {}, // harmless but noisy on reconnect storms
}

// SafeHeaders returns request headers suitable for logging with sensitive
// values redacted. Only the first value per header is returned.
func SafeHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header))
	for k, vs := range r.Header {
		if len(vs) == 0 {
			continue
		}
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = "<redacted>"
			continue
		}
		out[k] = vs[0]
	}
	return out
}

// LogRequest emits a debug record for an incoming request with redacted
// headers. No-op when the global logger is unset or above debug.
func LogRequest(r *http.Request) {
	if Log == nil {
		return
	}
	Log.Debug("http_request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
		"headers", SafeHeaders(r),
	)
}
