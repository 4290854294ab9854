// Package strategy resolves the ordered transform list for one file: scoped
// path-keyed overrides first, then pattern-keyed transforms in classifier
// order.
package strategy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/recheck/internal/patterns"
)

// Sentinel errors for strategy resolution.
var (
	// ErrUnknownPattern indicates a matched pattern name has no registered rule.
	ErrUnknownPattern = errors.New("unknown pattern name")
	// ErrEmptyOverrideName indicates an override was registered without a name.
	ErrEmptyOverrideName = errors.New("override name must not be empty")
	// ErrNilOverrideMatch indicates an override was registered without a scope matcher.
	ErrNilOverrideMatch = errors.New("override scope matcher must not be nil")
	// ErrNilOverrideTransform indicates an override was registered without a transform.
	ErrNilOverrideTransform = errors.New("override transform must not be nil")
)

// ScopedOverride is a path-targeted transform that takes precedence over
// generic pattern rules. It must not remove the suppression directive itself.
type ScopedOverride struct {
	// Name identifies the override in run output.
	Name string
	// Match reports whether the override applies to a root-relative path.
	Match func(path string) bool
	// Transform rewrites the file text.
	Transform func(path, text string) (string, error)
	// Requires names utility modules the transform references.
	Requires []string
}

// Step is one resolved transform in a file's application chain.
type Step struct {
	// Name is the originating override or rule name.
	Name string
	// Requires names utility modules to synthesize before applying.
	Requires []string
	// Apply performs the rewrite.
	Apply func(text string, fctx patterns.FileContext) (string, error)
}

// Registry pairs the pattern rule registry with scoped overrides.
type Registry struct {
	rules     *patterns.Registry
	overrides []ScopedOverride
}

// NewRegistry creates a strategy registry over the given rule registry.
func NewRegistry(rules *patterns.Registry) *Registry {
	return &Registry{rules: rules}
}

// RegisterOverride appends a scoped override. Overrides apply in
// registration order, before any pattern transform.
func (r *Registry) RegisterOverride(override ScopedOverride) error {
	if override.Name == "" {
		return ErrEmptyOverrideName
	}

	if override.Match == nil {
		return fmt.Errorf("%w: %s", ErrNilOverrideMatch, override.Name)
	}

	if override.Transform == nil {
		return fmt.Errorf("%w: %s", ErrNilOverrideTransform, override.Name)
	}

	r.overrides = append(r.overrides, override)

	return nil
}

// Rules exposes the underlying pattern registry.
func (r *Registry) Rules() *patterns.Registry {
	return r.rules
}

// Resolve builds the ordered transform list for a file: matching scoped
// overrides in registration order, then the transform of each matched
// pattern in the given (classifier) order. The result is deterministic for
// identical inputs.
func (r *Registry) Resolve(path string, matchedNames []string) ([]Step, error) {
	var steps []Step

	for _, override := range r.overrides {
		if !override.Match(path) {
			continue
		}

		transform := override.Transform
		steps = append(steps, Step{
			Name:     override.Name,
			Requires: override.Requires,
			Apply: func(text string, fctx patterns.FileContext) (string, error) {
				return transform(fctx.Path, text)
			},
		})
	}

	for _, name := range matchedNames {
		rule, ok := r.rules.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
		}

		steps = append(steps, Step{
			Name:     rule.Name,
			Requires: rule.Requires,
			Apply:    rule.Transform,
		})
	}

	return steps, nil
}

// PathPrefixMatcher builds a scope matcher for a root-relative path prefix.
func PathPrefixMatcher(prefix string) func(string) bool {
	prefix = filepath.ToSlash(prefix)

	return func(path string) bool {
		path = filepath.ToSlash(path)

		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
}

// GlobMatcher builds a scope matcher from a filepath glob over the
// root-relative path.
func GlobMatcher(pattern string) func(string) bool {
	return func(path string) bool {
		matched, err := filepath.Match(pattern, filepath.ToSlash(path))

		return err == nil && matched
	}
}
