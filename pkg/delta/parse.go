// Package delta extracts structured research updates from free-form agent
// replies. Parsing is permissive about surrounding prose and strict about
// the block's internal structure: the two phases are separated so the
// strictness downstream consumers rely on is independently testable.
//
// Parse never fails with an error; every outcome is a tagged
// models.Delta value.
package delta

import (
	"encoding/json"
	"fmt"

	"threadloom/pkg/models"
)

// envelope is the decoded shape of a delta block.
type envelope struct {
	Op      string          `json:"op"`
	Section string          `json:"section"`
	Payload json.RawMessage `json:"payload"`
}

// Parse locates a delta block in raw text, decodes it and runs
// section-specific structural validation. The result is always a tagged
// Delta; on failure Raw carries the full input so a human can recover
// context.
func Parse(raw string) models.Delta {
	block, ok := extractBlock(raw)
	if !ok {
		return models.InvalidDelta("no delta block found in reply", raw)
	}

	var env envelope
	if err := json.Unmarshal([]byte(block), &env); err != nil {
		return models.InvalidDelta(fmt.Sprintf("delta block is not valid JSON: %v", err), raw)
	}

	op, err := models.ParseOperation(env.Op)
	if err != nil {
		return models.InvalidDelta(err.Error(), raw)
	}
	section, err := models.ParseSection(env.Section)
	if err != nil {
		return models.InvalidDelta(err.Error(), raw)
	}

	if len(env.Payload) == 0 {
		return models.InvalidDelta(fmt.Sprintf("delta for section %q has no payload", section), raw)
	}
	var payload map[string]any
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return models.InvalidDelta(fmt.Sprintf("delta payload is not a JSON object: %v", err), raw)
	}

	if err := validatePayload(section, payload); err != nil {
		return models.InvalidDelta(err.Error(), raw)
	}
	return models.ValidDelta(op, section, payload)
}

// Format renders a delta as a fenced block suitable for embedding in a
// reply. A block built here parses back to an identical payload.
func Format(op models.Operation, section models.Section, payload map[string]any) (string, error) {
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation: %q", op)
	}
	if !section.Valid() {
		return "", fmt.Errorf("unknown section: %q", section)
	}
	body, err := json.MarshalIndent(envelopeOut{Op: op, Section: section, Payload: payload}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal delta: %w", err)
	}
	return fenceOpen + "\n" + string(body) + "\n" + fence, nil
}

type envelopeOut struct {
	Op      models.Operation `json:"op"`
	Section models.Section   `json:"section"`
	Payload map[string]any   `json:"payload"`
}
