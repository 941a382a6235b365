// Package api exposes the coordination protocol over HTTP: kickoff
// composition and delivery, delta linting, the SSE thread stream and the
// admin journal view.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"threadloom/pkg/auth"
	"threadloom/pkg/stream"
)

// Deps carries the collaborators handlers need. Proxy is the Thread Store
// client; it also satisfies stream.Fetcher.
type Deps struct {
	Proxy interface {
		stream.Fetcher
		SendKickoffer
	}
	// Stream defaults applied when the client does not ask for specifics.
	DefaultPollMS int
	BatchMax      int
	RetryMS       int
}

// Handler builds the API router.
func Handler(d Deps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/v1/threads/{threadId}/stream", d.streamHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/kickoffs", d.kickoffSendHandler).Methods(http.MethodPost)
	r.HandleFunc("/v1/kickoffs/preview", d.kickoffPreviewHandler).Methods(http.MethodPost)
	r.HandleFunc("/v1/deltas/lint", d.deltaLintHandler).Methods(http.MethodPost)
	r.Handle("/v1/admin/journal", auth.RequireAdmin(http.HandlerFunc(journalHandler))).Methods(http.MethodGet)

	return r
}
