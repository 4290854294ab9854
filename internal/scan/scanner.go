// Package scan discovers source files that carry a file-scoped checker
// suppression directive and builds the remediation work queue.
package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// directiveScanLines is how many leading lines are inspected for the
// suppression directive. The checker only honors it near the top of the file.
const directiveScanLines = 15

// languageProbeBytes is how much of a file is read for language detection.
const languageProbeBytes = 8 << 10

// RootModule is the module bucket for files directly under the scan root.
const RootModule = "."

// WorkItem is the unit of remediation: one suppressed file.
type WorkItem struct {
	// Path is the file path relative to the scan root.
	Path string
	// AbsPath is the absolute on-disk path.
	AbsPath string
	// Module is the owning module, inferred from the first path segment.
	Module string
	// HasDirective reports whether the suppression directive was found.
	HasDirective bool
}

// Filters narrows the scan result set.
type Filters struct {
	// Module keeps only files whose module name contains this substring.
	Module string
	// File keeps only files whose relative path contains this substring.
	File string
}

// Scanner walks a source tree looking for suppressed files. It is read-only.
type Scanner struct {
	root       string
	directive  string
	excludes   []string
	extensions []string
	languages  []string
	logger     *slog.Logger
}

// Options configures a Scanner beyond its root and directive.
type Options struct {
	// Excludes are root-relative path prefixes to skip.
	Excludes []string
	// Extensions are the target-language file extensions (with dot).
	Extensions []string
	// Languages are the accepted detected languages; empty accepts any.
	Languages []string
	// Logger is optional; nil discards scanner logging.
	Logger *slog.Logger
}

// New creates a scanner rooted at root, looking for the given directive.
func New(root, directive string, opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Scanner{
		root:       root,
		directive:  directive,
		excludes:   opts.Excludes,
		extensions: opts.Extensions,
		languages:  opts.Languages,
		logger:     logger,
	}
}

// Scan walks the tree and returns work items for every file carrying the
// suppression directive, in walk order. An empty result is not an error.
func (s *Scanner) Scan(filters Filters) ([]WorkItem, error) {
	rootInfo, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}

	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("stat scan root: %s is not a directory", s.root)
	}

	var items []WorkItem

	walkErr := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}

		if entry.IsDir() {
			if rel != "." && s.skipDir(rel) {
				return filepath.SkipDir
			}

			return nil
		}

		if !s.eligible(rel) {
			return nil
		}

		item, ok, itemErr := s.inspect(rel, path)
		if itemErr != nil {
			// Unreadable files are logged and skipped, not fatal.
			s.logger.Warn("skipping unreadable file", "path", rel, "error", itemErr)

			return nil
		}

		if ok && matchFilters(item, filters) {
			items = append(items, item)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, walkErr)
	}

	return items, nil
}

// skipDir reports whether a root-relative directory is excluded from the walk.
func (s *Scanner) skipDir(rel string) bool {
	if enry.IsVendor(rel + "/") {
		return true
	}

	for _, exclude := range s.excludes {
		if rel == exclude || strings.HasPrefix(rel, exclude+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

// testFileInfixes mark colocated test files, which are never remediated.
var testFileInfixes = []string{".test.", ".spec."}

// eligible reports whether a root-relative file path is a scan candidate.
func (s *Scanner) eligible(rel string) bool {
	if enry.IsVendor(rel) {
		return false
	}

	base := filepath.Base(rel)
	for _, infix := range testFileInfixes {
		if strings.Contains(base, infix) {
			return false
		}
	}

	ext := filepath.Ext(rel)

	return slices.Contains(s.extensions, ext)
}

// inspect reads the file head, confirms its language, and looks for the
// suppression directive.
func (s *Scanner) inspect(rel, path string) (WorkItem, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return WorkItem{}, false, err
	}
	defer file.Close()

	probe := make([]byte, languageProbeBytes)

	n, readErr := file.Read(probe)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return WorkItem{}, false, readErr
	}

	probe = probe[:n]

	if len(s.languages) > 0 {
		lang := enry.GetLanguage(filepath.Base(rel), probe)
		if lang != "" && !slices.Contains(s.languages, lang) {
			return WorkItem{}, false, nil
		}
	}

	if !HasDirective(probe, s.directive) {
		return WorkItem{}, false, nil
	}

	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		return WorkItem{}, false, absErr
	}

	return WorkItem{
		Path:         rel,
		AbsPath:      absPath,
		Module:       ModuleOf(rel),
		HasDirective: true,
	}, true, nil
}

// HasDirective reports whether the directive appears on one of the leading
// lines of the given content.
func HasDirective(content []byte, directive string) bool {
	scanner := bufio.NewScanner(strings.NewReader(string(content)))

	for line := 0; line < directiveScanLines && scanner.Scan(); line++ {
		if strings.TrimSpace(scanner.Text()) == directive {
			return true
		}
	}

	return false
}

// ModuleOf infers the owning module from the first segment of a root-relative
// path. Files directly under the root map to RootModule.
func ModuleOf(rel string) string {
	rel = filepath.ToSlash(rel)

	segments := strings.SplitN(rel, "/", 2)
	if len(segments) < 2 {
		return RootModule
	}

	// Conventional layouts nest modules one level down (src/billing/...).
	if segments[0] == "src" || segments[0] == "lib" || segments[0] == "packages" {
		inner := strings.SplitN(segments[1], "/", 2)
		if len(inner) == 2 {
			return inner[0]
		}
	}

	return segments[0]
}

// Apply filters an already scanned item set without re-walking the tree.
func Apply(items []WorkItem, filters Filters) []WorkItem {
	var kept []WorkItem

	for _, item := range items {
		if matchFilters(item, filters) {
			kept = append(kept, item)
		}
	}

	return kept
}

// matchFilters applies the optional module and file substring filters.
func matchFilters(item WorkItem, filters Filters) bool {
	if filters.Module != "" && !strings.Contains(item.Module, filters.Module) {
		return false
	}

	if filters.File != "" && !strings.Contains(item.Path, filters.File) {
		return false
	}

	return true
}
