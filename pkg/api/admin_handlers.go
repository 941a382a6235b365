package api

import (
	"net/http"

	"threadloom/pkg/journal"
	"threadloom/pkg/utils"
)

// journalHandler serves GET /v1/admin/journal?threadId=<id>: the locally
// recorded kickoffs and parse results for a thread. Admin only; the router
// wraps it in auth.RequireAdmin.
func journalHandler(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	if threadID == "" {
		utils.JSONError(w, http.StatusBadRequest, "threadId is required")
		return
	}
	if !journal.Ready() {
		utils.JSONError(w, http.StatusServiceUnavailable, "journal not available")
		return
	}
	entries, err := journal.ListEntries(threadID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"thread_id": threadID,
		"entries":   entries,
	})
}
