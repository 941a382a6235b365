package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"threadloom/pkg/journal"
	"threadloom/pkg/kickoff"
	"threadloom/pkg/logger"
	"threadloom/pkg/models"
	"threadloom/pkg/roles"
	"threadloom/pkg/telemetry"
	"threadloom/pkg/threadstore"
	"threadloom/pkg/utils"
)

// SendKickoffer is the delivery slice of the thread store client.
type SendKickoffer interface {
	SendKickoff(ctx context.Context, threadID string, msg models.KickoffMessage) error
}

// kickoffRequest is the JSON body for kickoff composition endpoints.
type kickoffRequest struct {
	ThreadID         string                               `json:"thread_id"`
	ResearchQuestion string                               `json:"research_question"`
	Context          string                               `json:"context,omitempty"`
	Excerpt          string                               `json:"excerpt,omitempty"`
	Recipients       []string                             `json:"recipients"`
	Roster           map[string]string                    `json:"roster,omitempty"`
	Operators        map[string][]kickoff.Operator        `json:"operators,omitempty"`
	MemoryContext    string                               `json:"memory_context,omitempty"`
	InitialHyps      string                               `json:"initial_hypotheses,omitempty"`
	Constraints      string                               `json:"constraints,omitempty"`
	RequestedOutputs map[string]string                    `json:"requested_outputs,omitempty"`
	Unified          bool                                 `json:"unified,omitempty"`
}

// toConfig converts the wire request, validating role names in roster,
// operators and requested_outputs against the closed role set.
func (kr kickoffRequest) toConfig() (kickoff.Config, error) {
	cfg := kickoff.Config{
		ThreadID:         kr.ThreadID,
		ResearchQuestion: kr.ResearchQuestion,
		Context:          kr.Context,
		Excerpt:          kr.Excerpt,
		Recipients:       kr.Recipients,
		MemoryContext:    kr.MemoryContext,
		InitialHyps:      kr.InitialHyps,
		Constraints:      kr.Constraints,
	}
	if kr.Roster != nil {
		cfg.Roster = roles.Roster{}
		for name, role := range kr.Roster {
			// Invalid values are caught by roster validation with its typed
			// error; pass them through untouched.
			cfg.Roster[name] = models.Role(role)
		}
	}
	if kr.Operators != nil {
		cfg.Operators = map[models.Role][]kickoff.Operator{}
		for roleName, ops := range kr.Operators {
			role, err := models.ParseRole(roleName)
			if err != nil {
				return cfg, err
			}
			cfg.Operators[role] = ops
		}
	}
	if kr.RequestedOutputs != nil {
		cfg.RequestedOutputs = map[models.Role]string{}
		for roleName, text := range kr.RequestedOutputs {
			role, err := models.ParseRole(roleName)
			if err != nil {
				return cfg, err
			}
			cfg.RequestedOutputs[role] = text
		}
	}
	return cfg, nil
}

// compose runs composition for either mode and classifies failures as
// input-validation errors.
func compose(kr kickoffRequest) ([]models.KickoffMessage, error) {
	cfg, err := kr.toConfig()
	if err != nil {
		return nil, err
	}
	if kr.Unified {
		msg, err := kickoff.ComposeUnified(cfg)
		if err != nil {
			return nil, err
		}
		return []models.KickoffMessage{msg}, nil
	}
	return kickoff.ComposeMessages(cfg)
}

// kickoffPreviewHandler serves POST /v1/kickoffs/preview: compose without
// delivering.
func (d Deps) kickoffPreviewHandler(w http.ResponseWriter, r *http.Request) {
	var kr kickoffRequest
	if err := json.NewDecoder(r.Body).Decode(&kr); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	msgs, err := compose(kr)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"messages": msgs})
}

// kickoffSendHandler serves POST /v1/kickoffs: compose, deliver through the
// Thread Store proxy and journal what was sent. Validation failures surface
// before any delivery; a delivery failure mid-batch is reported with the
// per-recipient outcome so the caller can retry the rest.
func (d Deps) kickoffSendHandler(w http.ResponseWriter, r *http.Request) {
	var kr kickoffRequest
	if err := json.NewDecoder(r.Body).Decode(&kr); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	msgs, err := compose(kr)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	type outcome struct {
		To        string `json:"to"`
		Delivered bool   `json:"delivered"`
		Error     string `json:"error,omitempty"`
	}
	outcomes := make([]outcome, 0, len(msgs))
	anyFailed := false
	for _, m := range msgs {
		o := outcome{To: m.To, Delivered: true}
		if err := d.Proxy.SendKickoff(r.Context(), kr.ThreadID, m); err != nil {
			o.Delivered = false
			o.Error = err.Error()
			anyFailed = true
			var rpcErr *threadstore.RPCError
			if errors.As(err, &rpcErr) {
				logger.Warn("kickoff_delivery_rejected", "to", m.To, "code", rpcErr.Code)
			}
		} else {
			telemetry.KickoffsComposed.Inc()
			if journal.Ready() {
				if jerr := journal.RecordKickoff(kr.ThreadID, m); jerr != nil {
					logger.Warn("journal_record_failed", "thread", kr.ThreadID, "error", jerr)
				}
			}
		}
		outcomes = append(outcomes, o)
	}

	status := http.StatusOK
	if anyFailed {
		status = http.StatusBadGateway
	}
	_ = utils.JSONWrite(w, status, map[string]any{
		"thread_id": kr.ThreadID,
		"messages":  msgs,
		"delivery":  outcomes,
	})
}
