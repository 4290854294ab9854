// Package synth lazily materializes shared helper modules referenced by
// generated fixes, exactly once per dependency.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// helperFileMode is the permission for synthesized helper files.
const helperFileMode = 0o644

// helperDirMode is the permission for created helper directories.
const helperDirMode = 0o755

// Sentinel errors for utility synthesis.
var (
	// ErrUnknownUtility indicates no template is registered for a dependency name.
	ErrUnknownUtility = errors.New("unknown utility dependency")
	// ErrUtilityUnwritable indicates the canonical location could not be written.
	ErrUtilityUnwritable = errors.New("utility location not writable")
)

// Template is the canonical source for one helper module.
type Template struct {
	// Filename is the helper file name inside the synthesizer directory.
	Filename string
	// Source is the full file content.
	Source string
}

// Synthesizer writes helper modules on demand. Ensure is safe to call
// concurrently and repeatedly: the first call per name materializes the
// file, later calls are no-ops after an existence check.
type Synthesizer struct {
	dir       string
	logger    *slog.Logger
	templates map[string]Template

	mu   sync.Mutex
	done map[string]bool
}

// New creates a synthesizer writing helpers under dir.
func New(dir string, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Synthesizer{
		dir:       dir,
		logger:    logger,
		templates: map[string]Template{},
		done:      map[string]bool{},
	}
}

// RegisterTemplate binds a dependency name to its canonical source.
func (s *Synthesizer) RegisterTemplate(name string, tpl Template) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[name] = tpl
}

// Ensure materializes the named helper if it does not already exist. The
// per-synthesizer mutex serializes the first-write-wins check so parallel
// remediation cannot duplicate-write.
func (s *Synthesizer) Ensure(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done[name] {
		return nil
	}

	tpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUtility, name)
	}

	target := filepath.Join(s.dir, tpl.Filename)

	_, statErr := os.Stat(target)
	if statErr == nil {
		s.done[name] = true

		return nil
	}

	if !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", ErrUtilityUnwritable, target, statErr)
	}

	mkdirErr := os.MkdirAll(s.dir, helperDirMode)
	if mkdirErr != nil {
		return fmt.Errorf("%w: %v", ErrUtilityUnwritable, mkdirErr)
	}

	writeErr := os.WriteFile(target, []byte(tpl.Source), helperFileMode)
	if writeErr != nil {
		return fmt.Errorf("%w: %v", ErrUtilityUnwritable, writeErr)
	}

	s.logger.Info("synthesized utility module", "name", name, "path", target)
	s.done[name] = true

	return nil
}

// Materialized reports whether the named helper was confirmed present during
// this run.
func (s *Synthesizer) Materialized(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done[name]
}
