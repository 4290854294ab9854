package patterns_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
	"github.com/Sumatoshi-tech/recheck/internal/patterns"
)

func identityTransform(text string, _ patterns.FileContext) (string, error) {
	return text, nil
}

func newRule(name string, match patterns.MatchFunc) patterns.Rule {
	return patterns.Rule{Name: name, Match: match, Transform: identityTransform}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()

	err := registry.Register(patterns.Rule{Match: patterns.CodeMatcher("TS1"), Transform: identityTransform})
	require.ErrorIs(t, err, patterns.ErrEmptyRuleName)

	err = registry.Register(patterns.Rule{Name: "no-match", Transform: identityTransform})
	require.ErrorIs(t, err, patterns.ErrNilMatch)

	err = registry.Register(patterns.Rule{Name: "no-transform", Match: patterns.CodeMatcher("TS1")})
	require.ErrorIs(t, err, patterns.ErrNilTransform)

	require.NoError(t, registry.Register(newRule("dup", patterns.CodeMatcher("TS1"))))
	err = registry.Register(newRule("dup", patterns.CodeMatcher("TS2")))
	require.ErrorIs(t, err, patterns.ErrDuplicateRule)
}

func TestClassify_RegistrationOrder(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()
	registry.MustRegister(newRule("second-registered", patterns.CodeMatcher("TS2")))
	registry.MustRegister(newRule("first-code", patterns.CodeMatcher("TS1")))

	records := []diagnose.Record{
		{Code: "TS1", Message: "one"},
		{Code: "TS2", Message: "two"},
	}

	// Registration order, regardless of record order.
	matched := registry.Classify(records)
	assert.Equal(t, []string{"second-registered", "first-code"}, matched)

	// Deterministic across calls.
	assert.Equal(t, matched, registry.Classify(records))
}

func TestClassify_EachRuleAtMostOnce(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()
	registry.MustRegister(newRule("only-once", patterns.CodeMatcher("TS1")))

	records := []diagnose.Record{{Code: "TS1"}, {Code: "TS1"}, {Code: "TS1"}}
	assert.Equal(t, []string{"only-once"}, registry.Classify(records))
}

func TestClassify_NoMatch(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()
	registry.MustRegister(newRule("never", patterns.CodeMatcher("TS9999")))

	assert.Empty(t, registry.Classify([]diagnose.Record{{Code: "TS1"}}))
	assert.Empty(t, registry.Classify(nil))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()
	registry.MustRegister(newRule("known", patterns.CodeMatcher("TS1")))

	rule, ok := registry.Lookup("known")
	assert.True(t, ok)
	assert.Equal(t, "known", rule.Name)

	_, ok = registry.Lookup("unknown")
	assert.False(t, ok)
}

func TestRestrict(t *testing.T) {
	t.Parallel()

	registry := patterns.NewRegistry()
	registry.MustRegister(newRule("a", patterns.CodeMatcher("TS1")))
	registry.MustRegister(newRule("b", patterns.CodeMatcher("TS2")))
	registry.MustRegister(newRule("c", patterns.CodeMatcher("TS3")))

	restricted, err := registry.Restrict([]string{"c", "a"})
	require.NoError(t, err)

	// Original registration order survives restriction.
	rules := restricted.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].Name)
	assert.Equal(t, "c", rules[1].Name)

	_, err = registry.Restrict([]string{"a", "missing"})
	require.ErrorIs(t, err, patterns.ErrUnknownRule)
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	message := patterns.MessageMatcher(regexp.MustCompile(`possibly 'undefined'`))
	assert.True(t, message("Object is possibly 'undefined'.", "TS2532"))
	assert.False(t, message("something else", "TS2532"))

	code := patterns.CodeMatcher("TS2531", "TS2532")
	assert.True(t, code("any message", "TS2532"))
	assert.False(t, code("any message", "TS9999"))

	either := patterns.AnyMatcher(message, code)
	assert.True(t, either("no match here", "TS2531"))
	assert.True(t, either("Object is possibly 'undefined'.", "TS0"))
	assert.False(t, either("no match here", "TS0"))
}
