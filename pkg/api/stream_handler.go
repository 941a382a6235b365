package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"threadloom/pkg/logger"
	"threadloom/pkg/stream"
	"threadloom/pkg/utils"
)

// streamHandler serves GET /v1/threads/{threadId}/stream.
//
// Query/header surface: `cursor` (non-negative int), `pollIntervalMs`
// (clamped to the server-safe range), `includeBodies` (bool), `projectKey`
// (must be an absolute path when present) and the `Last-Event-ID` header.
// When both cursor hints are present the maximum wins, so a reconnect never
// rewinds past what the client already has.
func (d Deps) streamHandler(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["threadId"]
	if strings.TrimSpace(threadID) == "" {
		utils.JSONError(w, http.StatusBadRequest, "threadId is required")
		return
	}

	q := r.URL.Query()
	if pk := q.Get("projectKey"); pk != "" && !filepath.IsAbs(pk) {
		utils.JSONError(w, http.StatusBadRequest, "projectKey must resolve to an absolute path")
		return
	}

	queryCursor, err := utils.NonNegInt("cursor", q.Get("cursor"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	lastEventID, err := utils.NonNegInt("last-event-id", r.Header.Get("Last-Event-ID"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pollMS := d.DefaultPollMS
	if v := q.Get("pollIntervalMs"); v != "" {
		n, err := utils.NonNegInt("pollIntervalMs", v)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		pollMS = int(*n)
	}

	sess, err := stream.NewSession(w, stream.Options{
		ThreadID:      threadID,
		Fetcher:       d.Proxy,
		Interval:      stream.ClampInterval(pollMS),
		IncludeBodies: utils.BoolParam(q.Get("includeBodies")),
		InitialCursor: stream.ResolveCursor(lastEventID, queryCursor),
		RetryMS:       d.RetryMS,
		BatchMax:      d.BatchMax,
	})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("stream_opened", "thread", threadID, "remote", r.RemoteAddr)
	// The request context is canceled on client disconnect; that signal is
	// the only thing that stops the poll loop.
	if err := sess.Run(r.Context()); err != nil {
		logger.Warn("stream_terminated", "thread", threadID, "error", err)
	}
}
