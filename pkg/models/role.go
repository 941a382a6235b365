package models

import "fmt"

// Role is the closed set of disciplines an agent can hold on a research
// thread. Exactly one role per agent per thread.
type Role string

const (
	RoleHypothesisGenerator Role = "hypothesis_generator"
	RoleTestDesigner        Role = "test_designer"
	RoleAdversarialCritic   Role = "adversarial_critic"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleHypothesisGenerator, RoleTestDesigner, RoleAdversarialCritic}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHypothesisGenerator, RoleTestDesigner, RoleAdversarialCritic:
		return true
	}
	return false
}

// ParseRole converts a string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// FamilyCode returns the machine-readable model-family code embedded in
// kickoff reply-format tags (DELTA[<code>]). The code is derived from the
// role, never freely chosen.
func (r Role) FamilyCode() string {
	switch r {
	case RoleHypothesisGenerator:
		return "gpt"
	case RoleTestDesigner:
		return "opus"
	case RoleAdversarialCritic:
		return "gemini"
	}
	return ""
}

// Agent binds a display name to its resolved role for one thread.
type Agent struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
