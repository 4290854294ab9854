// Package patterns classifies diagnostic messages into named error patterns
// and binds each pattern to a textual transform.
package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
)

// Sentinel errors for rule registration.
var (
	// ErrEmptyRuleName indicates a rule was registered without a name.
	ErrEmptyRuleName = errors.New("rule name must not be empty")
	// ErrDuplicateRule indicates a rule name collides with an existing rule.
	ErrDuplicateRule = errors.New("duplicate rule name")
	// ErrNilMatch indicates a rule was registered without a match predicate.
	ErrNilMatch = errors.New("rule match predicate must not be nil")
	// ErrNilTransform indicates a rule was registered without a transform.
	ErrNilTransform = errors.New("rule transform must not be nil")
)

// MatchFunc is a pure predicate over one diagnostic's message and code.
type MatchFunc func(message, code string) bool

// TransformFunc rewrites source text. It must not perform I/O; helper module
// needs are declared via Rule.Requires and satisfied by the synthesizer.
type TransformFunc func(text string, fctx FileContext) (string, error)

// FileContext carries the diagnostics a transform may use for coordinates.
type FileContext struct {
	// Path is the root-relative path of the file being transformed.
	Path string
	// Records are the pre-transform diagnostics for the file.
	Records []diagnose.Record
	// HelperDir is the root-relative directory where synthesized helper
	// modules live. Empty selects the default utilities directory.
	HelperDir string
}

// Rule is a named classification and fix binding.
type Rule struct {
	// Name is the globally unique rule key.
	Name string
	// Description explains what the rule matches and rewrites.
	Description string
	// Match tests one diagnostic message/code pair.
	Match MatchFunc
	// Transform rewrites the file text when the rule matched.
	Transform TransformFunc
	// Requires names utility modules the transform references.
	Requires []string
}

// Registry holds rules in registration order. Classification order is
// registration order, which downstream fix application depends on.
type Registry struct {
	rules []Rule
	names map[string]int
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]int{}}
}

// Register appends a rule. Names must be globally unique.
func (r *Registry) Register(rule Rule) error {
	if rule.Name == "" {
		return ErrEmptyRuleName
	}

	if _, exists := r.names[rule.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Name)
	}

	if rule.Match == nil {
		return fmt.Errorf("%w: %s", ErrNilMatch, rule.Name)
	}

	if rule.Transform == nil {
		return fmt.Errorf("%w: %s", ErrNilTransform, rule.Name)
	}

	r.names[rule.Name] = len(r.rules)
	r.rules = append(r.rules, rule)

	return nil
}

// MustRegister registers a rule and panics on error. For built-in rule sets
// whose names are compile-time constants.
func (r *Registry) MustRegister(rule Rule) {
	err := r.Register(rule)
	if err != nil {
		panic(err)
	}
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	return slices.Clone(r.rules)
}

// ErrUnknownRule indicates a rule name not present in the registry.
var ErrUnknownRule = errors.New("unknown rule")

// Restrict returns a new registry holding only the named rules, preserving
// the original registration order regardless of the order names are given in.
func (r *Registry) Restrict(names []string) (*Registry, error) {
	for _, name := range names {
		if _, ok := r.names[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
	}

	restricted := NewRegistry()

	for _, rule := range r.rules {
		if slices.Contains(names, rule.Name) {
			restricted.MustRegister(rule)
		}
	}

	return restricted, nil
}

// Lookup returns the rule with the given name.
func (r *Registry) Lookup(name string) (Rule, bool) {
	idx, ok := r.names[name]
	if !ok {
		return Rule{}, false
	}

	return r.rules[idx], true
}

// Classify returns the names of rules matching at least one record, in
// registration order. The same input always yields the same output.
func (r *Registry) Classify(records []diagnose.Record) []string {
	var matched []string

	for _, rule := range r.rules {
		for _, record := range records {
			if rule.Match(record.Message, record.Code) {
				matched = append(matched, rule.Name)

				break
			}
		}
	}

	return matched
}

// MessageMatcher builds a MatchFunc testing the message against a regexp.
func MessageMatcher(re *regexp.Regexp) MatchFunc {
	return func(message, _ string) bool {
		return re.MatchString(message)
	}
}

// CodeMatcher builds a MatchFunc testing the diagnostic code against a fixed set.
func CodeMatcher(codes ...string) MatchFunc {
	return func(_, code string) bool {
		return slices.Contains(codes, code)
	}
}

// AnyMatcher builds a MatchFunc that is true when any given matcher is.
func AnyMatcher(matchers ...MatchFunc) MatchFunc {
	return func(message, code string) bool {
		for _, match := range matchers {
			if match(message, code) {
				return true
			}
		}

		return false
	}
}
