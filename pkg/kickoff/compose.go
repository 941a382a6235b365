// Package kickoff composes the role-assigning messages that start a
// research thread. One message per recipient in per-recipient mode, or one
// shared message annotated with a role-assignment table in unified mode.
package kickoff

import (
	"fmt"
	"strings"

	"threadloom/pkg/models"
	"threadloom/pkg/roles"
)

// subjectMax bounds subject length so subjects remain stable across systems
// with subject-length limits.
const subjectMax = 80

// Operator is a named reasoning technique assigned to a role for the
// session.
type Operator struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config carries everything needed to compose kickoff messages.
type Config struct {
	ThreadID         string
	ResearchQuestion string
	Context          string
	Excerpt          string // pre-formatted quoted-source block
	Recipients       []string
	Roster           roles.Roster                 // optional; total precedence over heuristics
	Operators        map[models.Role][]Operator   // optional per-role operator selections
	MemoryContext    string                       // optional
	InitialHyps      string                       // optional
	Constraints      string                       // optional
	RequestedOutputs map[models.Role]string       // optional custom text per role
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ThreadID) == "" {
		return fmt.Errorf("threadId is required")
	}
	if strings.TrimSpace(c.ResearchQuestion) == "" {
		return fmt.Errorf("researchQuestion is required")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// ComposeMessages builds one kickoff message per recipient. Roster
// validation failures surface before any message is produced; a recipient
// unrecognized by heuristics simply falls through to the default role.
func ComposeMessages(cfg Config) ([]models.KickoffMessage, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	assignments, err := roles.Assign(cfg.Recipients, cfg.Roster)
	if err != nil {
		return nil, err
	}

	subject := Subject(cfg.ThreadID, cfg.ResearchQuestion)
	out := make([]models.KickoffMessage, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, models.KickoffMessage{
			To:          a.Name,
			Subject:     subject,
			Body:        composeBody(cfg, a),
			AckRequired: true,
			Role:        a.Role,
		})
	}
	return out, nil
}

// ComposeUnified builds a single shared kickoff for all recipients. The
// body carries a role-assignment table instead of a single role prompt, and
// every role's requested outputs.
func ComposeUnified(cfg Config) (models.KickoffMessage, error) {
	if err := cfg.validate(); err != nil {
		return models.KickoffMessage{}, err
	}
	assignments, err := roles.Assign(cfg.Recipients, cfg.Roster)
	if err != nil {
		return models.KickoffMessage{}, err
	}

	var b sectionBuilder
	b.add("Research Kickoff", "Thread "+cfg.ThreadID+". Each participant holds the role listed below.")
	b.add("Role Assignments", roleTable(assignments))
	b.add("Research Question", cfg.ResearchQuestion)
	b.add("Context", cfg.Context)
	b.add("Source Excerpt", cfg.Excerpt)
	b.add("Memory", cfg.MemoryContext)
	b.add("Initial Hypotheses", cfg.InitialHyps)
	b.add("Constraints", cfg.Constraints)

	for _, role := range models.Roles {
		if !roleAssigned(assignments, role) {
			continue
		}
		b.add("Requested Outputs — "+string(role), outputsFor(cfg, role))
		if ops := cfg.Operators[role]; len(ops) > 0 {
			b.add("Operators — "+string(role), operatorCards(ops))
		}
	}
	b.add("Reply Format", unifiedReplyFormat(assignments))

	return models.KickoffMessage{
		To:          strings.Join(cfg.Recipients, ", "),
		Subject:     Subject(cfg.ThreadID, cfg.ResearchQuestion),
		Body:        b.String(),
		AckRequired: true,
	}, nil
}

// composeBody assembles one recipient's body from ordered optional
// sections. A section with empty source content is omitted entirely, never
// emitted as an empty heading.
func composeBody(cfg Config, a roles.Assignment) string {
	var b sectionBuilder
	b.add("Your Role: "+string(a.Role), RolePrompt(a.Role))
	b.add("Research Question", cfg.ResearchQuestion)
	b.add("Context", cfg.Context)
	b.add("Source Excerpt", cfg.Excerpt)
	b.add("Memory", cfg.MemoryContext)
	b.add("Initial Hypotheses", cfg.InitialHyps)
	b.add("Constraints", cfg.Constraints)
	if ops := cfg.Operators[a.Role]; len(ops) > 0 {
		b.add("Operators", operatorCards(ops))
	}
	b.add("Requested Outputs", outputsFor(cfg, a.Role))
	b.add("Reply Format", replyFormat(a.Role))
	return b.String()
}

func outputsFor(cfg Config, role models.Role) string {
	if custom, ok := cfg.RequestedOutputs[role]; ok && strings.TrimSpace(custom) != "" {
		return custom
	}
	return DefaultOutputs(role)
}

// operatorCards renders each selected operator as a labeled card followed
// by a machine-parseable tag so downstream tooling can detect which
// operators were in play without re-parsing prose.
func operatorCards(ops []Operator) string {
	var parts []string
	for _, op := range ops {
		card := "**" + op.Name + "**"
		if op.Description != "" {
			card += "\n" + op.Description
		}
		card += "\n[OPERATOR: " + op.Name + "]"
		parts = append(parts, card)
	}
	return strings.Join(parts, "\n\n")
}

// replyFormat embeds the family-specific DELTA tag so the expected reply
// format is unambiguous and greppable.
func replyFormat(role models.Role) string {
	return "Reply in this thread. Embed every structured update in a fenced " +
		"block tagged `delta` containing a JSON object with `op`, `section` and " +
		"`payload` fields.\nDELTA[" + role.FamilyCode() + "]"
}

func unifiedReplyFormat(assignments []roles.Assignment) string {
	var b strings.Builder
	b.WriteString("Reply in this thread. Embed every structured update in a fenced " +
		"block tagged `delta` containing a JSON object with `op`, `section` and " +
		"`payload` fields.\n")
	for _, a := range assignments {
		b.WriteString(a.Name + ": DELTA[" + a.Role.FamilyCode() + "]\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func roleTable(assignments []roles.Assignment) string {
	var b strings.Builder
	b.WriteString("| Agent | Role |\n|---|---|\n")
	for _, a := range assignments {
		b.WriteString("| " + a.Name + " | " + string(a.Role) + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func roleAssigned(assignments []roles.Assignment, role models.Role) bool {
	for _, a := range assignments {
		if a.Role == role {
			return true
		}
	}
	return false
}

// Subject builds the kickoff subject from the thread id and a truncated
// form of the research question.
func Subject(threadID, question string) string {
	return "[" + threadID + "] " + Truncate(question, subjectMax)
}

// Truncate cuts s to at most max runes, suffixing an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "…"
}

// sectionBuilder joins non-empty markdown sections in order.
type sectionBuilder struct {
	parts []string
}

func (b *sectionBuilder) add(heading, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	b.parts = append(b.parts, "## "+heading+"\n\n"+strings.TrimSpace(content))
}

func (b *sectionBuilder) String() string {
	return strings.Join(b.parts, "\n\n") + "\n"
}
