package delta

import (
	"fmt"

	"threadloom/pkg/models"
)

// Strict phase: schema-check a decoded payload against its section's
// contract. Payload contents are passed through exactly as supplied; no
// coercion beyond type-checking.

// hypothesisFields and testFields are checked in order so error messages
// are deterministic.
var (
	hypothesisFields = []string{"name", "claim", "mechanism"}
	testFields       = []string{"name", "procedure", "discriminates", "expected_outcomes", "potency_check"}
	scoreDimensions  = []string{"likelihood_ratio", "cost", "speed", "ambiguity"}
)

const (
	scoreMin = 0
	scoreMax = 3
)

func validatePayload(section models.Section, payload map[string]any) error {
	switch section {
	case models.SectionHypothesis:
		return requireStrings(section, payload, hypothesisFields)
	case models.SectionTest:
		// A test with no falsification consequence is not a valid test, so
		// potency_check must be present and non-empty like the rest.
		return requireStrings(section, payload, testFields)
	case models.SectionScore:
		return validateScore(payload)
	}
	return fmt.Errorf("unknown section: %q", section)
}

// requireStrings checks that every named field is present as a non-empty
// string.
func requireStrings(section models.Section, payload map[string]any, fields []string) error {
	for _, f := range fields {
		v, ok := payload[f]
		if !ok {
			return fmt.Errorf("section %q payload is missing required field %q", section, f)
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("section %q field %q must be a string", section, f)
		}
		if s == "" {
			return fmt.Errorf("section %q field %q must be non-empty", section, f)
		}
	}
	return nil
}

// validateScore checks that any supplied dimensions are numbers inside the
// closed [0,3] range. All four dimensions are optional.
func validateScore(payload map[string]any) error {
	for _, dim := range scoreDimensions {
		v, ok := payload[dim]
		if !ok {
			continue
		}
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("score dimension %q must be a number", dim)
		}
		if n < scoreMin || n > scoreMax {
			return fmt.Errorf("score dimension %q is out of range [0,3]: %v", dim, n)
		}
	}
	return nil
}
