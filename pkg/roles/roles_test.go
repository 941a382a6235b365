package roles

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadloom/pkg/models"
)

func TestResolveExactTableCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Codex", "cOdEx", "CODEX", "codex"} {
		a := Resolve(name)
		assert.Equal(t, models.RoleHypothesisGenerator, a.Role, "name=%s", name)
		assert.Equal(t, SourceExact, a.Source, "name=%s", name)
	}
	assert.Equal(t, Resolve("Codex").Role, Resolve("CODEX").Role)

	a := Resolve("Opus")
	assert.Equal(t, models.RoleTestDesigner, a.Role)
	a = Resolve("GEMINI")
	assert.Equal(t, models.RoleAdversarialCritic, a.Role)
}

func TestResolveKeywords(t *testing.T) {
	cases := []struct {
		name string
		want models.Role
	}{
		{"gpt-5.2-preview", models.RoleHypothesisGenerator},
		{"OpenAI Research", models.RoleHypothesisGenerator},
		{"claude-sonnet-next", models.RoleTestDesigner},
		{"Anthropic Worker 3", models.RoleTestDesigner},
		{"google-deepthink", models.RoleAdversarialCritic},
		{"Bard Legacy", models.RoleAdversarialCritic},
	}
	for _, c := range cases {
		a := Resolve(c.name)
		assert.Equal(t, c.want, a.Role, "name=%s", c.name)
		assert.Equal(t, SourceKeyword, a.Source, "name=%s", c.name)
	}
}

func TestResolveKeywordPriorityIsDeterministic(t *testing.T) {
	// Contains both a gpt token and a gemini token; the hypothesis family is
	// checked first so it must win.
	a := Resolve("gpt-gemini-hybrid")
	assert.Equal(t, models.RoleHypothesisGenerator, a.Role)

	// claude outranks gemini in check order.
	a = Resolve("claude-vs-gemini-arena")
	assert.Equal(t, models.RoleTestDesigner, a.Role)
}

func TestResolveDefault(t *testing.T) {
	a := Resolve("totally-unknown-agent")
	assert.Equal(t, DefaultRole, a.Role)
	assert.Equal(t, SourceDefault, a.Source)
}

func TestRosterValidation(t *testing.T) {
	recipients := []string{"alice", "bob"}

	t.Run("missing mapping", func(t *testing.T) {
		ro := Roster{"alice": models.RoleTestDesigner}
		err := ro.Validate(recipients)
		require.Error(t, err)
		var miss *MissingRoleMappingError
		require.True(t, errors.As(err, &miss))
		assert.Equal(t, "bob", miss.Recipient)
	})

	t.Run("invalid role value", func(t *testing.T) {
		ro := Roster{"alice": "referee", "bob": models.RoleTestDesigner}
		err := ro.Validate(recipients)
		var inv *InvalidRoleValueError
		require.True(t, errors.As(err, &inv))
		assert.Equal(t, "referee", inv.Value)
	})

	t.Run("blank recipient key", func(t *testing.T) {
		ro := Roster{"  ": models.RoleTestDesigner, "alice": models.RoleTestDesigner, "bob": models.RoleAdversarialCritic}
		err := ro.Validate(recipients)
		var empty *EmptyRecipientNameError
		require.True(t, errors.As(err, &empty))
	})

	t.Run("complete roster passes", func(t *testing.T) {
		ro := Roster{"alice": models.RoleTestDesigner, "bob": models.RoleAdversarialCritic}
		require.NoError(t, ro.Validate(recipients))
	})
}

func TestAssignRosterPrecedence(t *testing.T) {
	// Roster wins even when heuristics would say otherwise.
	ro := Roster{"Codex": models.RoleAdversarialCritic}
	got, err := Assign([]string{"Codex"}, ro)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.RoleAdversarialCritic, got[0].Role)
	assert.Equal(t, SourceRoster, got[0].Source)
}

func TestAssignHeuristicFallback(t *testing.T) {
	got, err := Assign([]string{"Codex", "Opus", "mystery"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.RoleHypothesisGenerator, got[0].Role)
	assert.Equal(t, models.RoleTestDesigner, got[1].Role)
	assert.Equal(t, DefaultRole, got[2].Role)
}
