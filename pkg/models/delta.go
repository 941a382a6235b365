package models

import "fmt"

// Operation is the closed set of actions a delta can perform on a thread's
// research state.
type Operation string

const (
	OpAdd      Operation = "add"
	OpRevise   Operation = "revise"
	OpWithdraw Operation = "withdraw"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OpAdd, OpRevise, OpWithdraw:
		return true
	}
	return false
}

// ParseOperation converts a string into an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation: %q", s)
	}
	return op, nil
}

// Section identifies which kind of research artifact a delta payload
// represents. Closed set; required payload fields depend on it.
type Section string

const (
	SectionHypothesis Section = "hypothesis"
	SectionTest       Section = "test"
	SectionScore      Section = "score"
)

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionHypothesis, SectionTest, SectionScore:
		return true
	}
	return false
}

// ParseSection converts a string into a Section.
func ParseSection(s string) (Section, error) {
	sec := Section(s)
	if !sec.Valid() {
		return "", fmt.Errorf("unknown section: %q", s)
	}
	return sec, nil
}

// Delta is the tagged result of parsing an agent reply. Exactly one of the
// two shapes is populated: a valid delta carries Operation, Section and the
// decoded Payload; an invalid one carries the error and the original text so
// a human can recover context.
type Delta struct {
	Valid     bool           `json:"valid"`
	Operation Operation      `json:"operation,omitempty"`
	Section   Section        `json:"section,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
	Raw       string         `json:"raw,omitempty"`
}

// ValidDelta constructs the success arm of the union.
func ValidDelta(op Operation, sec Section, payload map[string]any) Delta {
	return Delta{Valid: true, Operation: op, Section: sec, Payload: payload}
}

// InvalidDelta constructs the failure arm of the union.
func InvalidDelta(errMsg, raw string) Delta {
	return Delta{Valid: false, Error: errMsg, Raw: raw}
}
