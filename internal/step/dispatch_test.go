package step_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/step"
)

func TestMatch_InlineQuotedToken(t *testing.T) {
	tpl := step.Parse("I click {selector}")
	bound, ok := step.Match(`I click "#submit"`, nil, tpl)
	require.True(t, ok)
	assert.Equal(t, "#submit", bound.Values["selector"])
}

func TestMatch_SiblingKey(t *testing.T) {
	tpl := step.Parse("I click {selector}")
	bound, ok := step.Match("I click the button", map[string]string{"selector": "#submit"}, tpl)
	require.True(t, ok)
	assert.Equal(t, "#submit", bound.Values["selector"])
}

func TestMatch_NoMatch(t *testing.T) {
	tpl := step.Parse("I click {selector}")
	_, ok := step.Match("I hover the button", nil, tpl)
	assert.False(t, ok)
}

func TestResolve_FewestHolesWins(t *testing.T) {
	candidates := []step.Candidate{
		{Key: "with-hole", Template: step.Parse("I press {keyname} the key")},
		{Key: "no-hole", Template: step.Parse("I press the key")},
	}
	cand, _, err := step.Resolve("I press the key", nil, candidates)
	require.NoError(t, err)
	assert.Equal(t, "no-hole", cand.Key)
}

func TestResolve_LiteralLengthTiebreak(t *testing.T) {
	candidates := []step.Candidate{
		{Key: "short", Template: step.Parse("I see {text}")},
		{Key: "long", Template: step.Parse("I see the text {text} on the page")},
	}
	cand, bound, err := step.Resolve(`I see the text "hello" on the page`, nil, candidates)
	require.NoError(t, err)
	assert.Equal(t, "long", cand.Key)
	assert.Equal(t, "hello", bound.Values["text"])
}

func TestResolve_Unresolved(t *testing.T) {
	candidates := []step.Candidate{
		{Key: "a", Template: step.Parse("I click {selector}")},
	}
	_, _, err := step.Resolve("I fly to the moon", nil, candidates)
	require.Error(t, err)
	var unresolved *step.Unresolved
	require.ErrorAs(t, err, &unresolved)
	assert.Contains(t, unresolved.Error(), "I fly to the moon")
}

func TestResolve_RegistrationOrderTiebreak(t *testing.T) {
	candidates := []step.Candidate{
		{Key: "first", Template: step.Parse("I click {selector}")},
		{Key: "second", Template: step.Parse("I click {selector}")},
	}
	cand, _, err := step.Resolve(`I click "#x"`, nil, candidates)
	require.NoError(t, err)
	assert.Equal(t, "first", cand.Key)
}
