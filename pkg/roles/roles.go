// Package roles maps agent display names to research-thread roles.
//
// Resolution runs in three stages with defined precedence: a
// case-insensitive exact match against the known identity table, then
// case-insensitive keyword matching in a fixed priority order, then a
// default. An explicit roster supplied by the caller bypasses the
// heuristics entirely and is strictly validated instead.
package roles

import (
	"strings"

	"threadloom/pkg/models"
)

// Source records which resolution stage produced an assignment.
type Source string

const (
	SourceExact   Source = "exact"
	SourceKeyword Source = "keyword"
	SourceDefault Source = "default"
	SourceRoster  Source = "roster"
)

// Assignment is the result of resolving one agent name.
type Assignment struct {
	Name   string
	Role   models.Role
	Source Source
}

// DefaultRole is assigned when no rule matches a name.
const DefaultRole = models.RoleHypothesisGenerator

// knownAgents is the fixed identity table, one entry per role. Keys are
// lowercase.
var knownAgents = map[string]models.Role{
	"codex":  models.RoleHypothesisGenerator,
	"opus":   models.RoleTestDesigner,
	"gemini": models.RoleAdversarialCritic,
}

// keywordRules are checked in order; the first rule with a matching token
// wins, so a name containing tokens from several families resolves
// deterministically.
var keywordRules = []struct {
	role   models.Role
	tokens []string
}{
	{models.RoleHypothesisGenerator, []string{"gpt", "codex", "openai"}},
	{models.RoleTestDesigner, []string{"claude", "opus", "sonnet", "anthropic"}},
	{models.RoleAdversarialCritic, []string{"gemini", "google", "bard"}},
}

// Resolve maps an agent display name to a role assignment. It never fails;
// unrecognized names fall through to the default role.
func Resolve(name string) Assignment {
	lower := strings.ToLower(strings.TrimSpace(name))
	if role, ok := knownAgents[lower]; ok {
		return Assignment{Name: name, Role: role, Source: SourceExact}
	}
	for _, rule := range keywordRules {
		for _, tok := range rule.tokens {
			if strings.Contains(lower, tok) {
				return Assignment{Name: name, Role: rule.role, Source: SourceKeyword}
			}
		}
	}
	return Assignment{Name: name, Role: DefaultRole, Source: SourceDefault}
}

// Roster is an explicit agent-to-role map supplied by a caller. When
// present it takes total precedence over heuristics.
type Roster map[string]models.Role

// Validate checks a roster against the recipient list. Every recipient must
// have an entry, every entry must name a valid role, and no key may be
// blank. Failures are typed input-validation errors, raised before any
// composition happens.
func (ro Roster) Validate(recipients []string) error {
	for key, role := range ro {
		if strings.TrimSpace(key) == "" {
			return &EmptyRecipientNameError{}
		}
		if !role.Valid() {
			return &InvalidRoleValueError{Recipient: key, Value: string(role)}
		}
	}
	for _, rcpt := range recipients {
		if _, ok := ro[rcpt]; !ok {
			return &MissingRoleMappingError{Recipient: rcpt}
		}
	}
	return nil
}

// Assign resolves roles for all recipients. With a non-nil roster, the
// roster is validated and used verbatim; otherwise each recipient goes
// through Resolve.
func Assign(recipients []string, roster Roster) ([]Assignment, error) {
	if roster != nil {
		if err := roster.Validate(recipients); err != nil {
			return nil, err
		}
		out := make([]Assignment, 0, len(recipients))
		for _, rcpt := range recipients {
			out = append(out, Assignment{Name: rcpt, Role: roster[rcpt], Source: SourceRoster})
		}
		return out, nil
	}
	out := make([]Assignment, 0, len(recipients))
	for _, rcpt := range recipients {
		out = append(out, Resolve(rcpt))
	}
	return out, nil
}
