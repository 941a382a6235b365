package api

import (
	"io"
	"net/http"

	"threadloom/pkg/delta"
	"threadloom/pkg/journal"
	"threadloom/pkg/logger"
	"threadloom/pkg/telemetry"
	"threadloom/pkg/utils"
)

// maxLintBody bounds how much of an agent reply the lint endpoint will
// read.
const maxLintBody = 1 << 20

// deltaLintHandler serves POST /v1/deltas/lint. The body is the raw agent
// reply; the response is the tagged parse result. Malformed replies are a
// 200 with valid=false, not an HTTP error: parse failures are data here.
func (d Deps) deltaLintHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLintBody))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(raw) == 0 {
		utils.JSONError(w, http.StatusBadRequest, "empty body")
		return
	}

	res := delta.Parse(string(raw))
	telemetry.CountDelta(res.Valid)

	if threadID := r.URL.Query().Get("threadId"); threadID != "" && journal.Ready() {
		if jerr := journal.RecordDelta(threadID, res); jerr != nil {
			logger.Warn("journal_record_failed", "thread", threadID, "error", jerr)
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, res)
}
