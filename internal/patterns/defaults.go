package patterns

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
)

// UtilityDocumentHelper is the synthesized helper module providing the
// asDocument() cast used by the objectid rule.
const UtilityDocumentHelper = "document-helper"

// documentHelperBase is the document helper's module file base name, without
// extension. The directory comes from the file context's helper dir.
const documentHelperBase = "document"

// defaultHelperDir is the fallback utilities directory when the file context
// does not carry a configured one.
const defaultHelperDir = "src/utils"

var (
	objectIDMessage      = regexp.MustCompile(`Property '_id' does not exist|\(_id access\)`)
	implicitAnyMessage   = regexp.MustCompile(`Parameter '([A-Za-z_$][\w$]*)' implicitly has an 'any' type`)
	unknownCatchMessage  = regexp.MustCompile(`'([A-Za-z_$][\w$]*)' is of type 'unknown'`)
	catchClausePattern   = regexp.MustCompile(`catch\s*\(\s*([A-Za-z_$][\w$]*)\s*\)`)
	idAccessPattern      = regexp.MustCompile(`([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\._id\b`)
	asDocumentCallScheme = "asDocument(%s)._id"
)

// DefaultRegistry returns the built-in rule set. Rules are matched and
// applied in registration order; coordinate-addressed rules come first, and
// objectid-access last because its import insertion shifts line numbers.
func DefaultRegistry() *Registry {
	registry := NewRegistry()

	registry.MustRegister(Rule{
		Name:        "implicit-any-param",
		Description: "Annotates parameters the checker reports as implicitly any.",
		Match:       AnyMatcher(CodeMatcher("TS7006"), MessageMatcher(implicitAnyMessage)),
		Transform:   transformImplicitAny,
	})

	registry.MustRegister(Rule{
		Name:        "possibly-undefined",
		Description: "Adds non-null assertions where the checker reports possibly undefined access.",
		Match:       CodeMatcher("TS2532", "TS18048"),
		Transform:   transformNonNullAssert,
	})

	registry.MustRegister(Rule{
		Name:        "possibly-null",
		Description: "Adds non-null assertions where the checker reports possibly null access.",
		Match:       CodeMatcher("TS2531", "TS18047"),
		Transform:   transformNonNullAssert,
	})

	registry.MustRegister(Rule{
		Name:        "unknown-catch",
		Description: "Types catch-clause bindings the checker reports as unknown.",
		Match:       AnyMatcher(CodeMatcher("TS18046"), MessageMatcher(unknownCatchMessage)),
		Transform:   transformUnknownCatch,
	})

	registry.MustRegister(Rule{
		Name:        "objectid-access",
		Description: "Rewrites raw ._id accesses through the asDocument() helper cast.",
		Match:       MessageMatcher(objectIDMessage),
		Transform:   transformObjectID,
		Requires:    []string{UtilityDocumentHelper},
	})

	return registry
}

// transformObjectID wraps every bare ._id access in the asDocument() helper
// and ensures the helper import is present.
func transformObjectID(text string, fctx FileContext) (string, error) {
	rewritten := idAccessPattern.ReplaceAllStringFunc(text, func(match string) string {
		receiver := strings.TrimSuffix(match, "._id")
		if strings.HasPrefix(receiver, "asDocument(") {
			return match
		}

		return fmt.Sprintf(asDocumentCallScheme, receiver)
	})

	if rewritten == text {
		return text, nil
	}

	importLine := documentHelperImport(fctx.Path, fctx.HelperDir)
	if !HasLine(rewritten, importLine) {
		rewritten = PrependLine(rewritten, importLine)
	}

	return rewritten, nil
}

// transformImplicitAny annotates each implicitly-any parameter named in the
// diagnostics with an explicit any.
func transformImplicitAny(text string, fctx FileContext) (string, error) {
	for _, record := range sortedDescending(fctx.Records) {
		match := implicitAnyMessage.FindStringSubmatch(record.Message)
		if match == nil {
			continue
		}

		name := match[1]

		text = EditLine(text, record.Line, func(content string) string {
			if strings.Contains(content, name+":") {
				return content
			}

			return InsertAfterColumn(content, record.Column, ": any")
		})
	}

	return text, nil
}

// transformNonNullAssert inserts a non-null assertion after the token each
// possibly-undefined/null diagnostic points at.
func transformNonNullAssert(text string, fctx FileContext) (string, error) {
	for _, record := range sortedDescending(fctx.Records) {
		if record.Code != "TS2531" && record.Code != "TS2532" &&
			record.Code != "TS18047" && record.Code != "TS18048" {
			continue
		}

		text = EditLine(text, record.Line, func(content string) string {
			return InsertAfterColumn(content, record.Column, "!")
		})
	}

	return text, nil
}

// transformUnknownCatch rewrites catch (e) to catch (e: any) on lines the
// diagnostics point at.
func transformUnknownCatch(text string, fctx FileContext) (string, error) {
	for _, record := range sortedDescending(fctx.Records) {
		if !unknownCatchMessage.MatchString(record.Message) && record.Code != "TS18046" {
			continue
		}

		text = EditLine(text, record.Line, func(content string) string {
			return catchClausePattern.ReplaceAllString(content, "catch ($1: any)")
		})
	}

	return text, nil
}

// documentHelperImport computes the import line for the document helper
// relative to the importing file. The helper lives under helperDir, the same
// root-relative directory the synthesizer materializes into. Pure path
// arithmetic, no I/O.
func documentHelperImport(fromPath, helperDir string) string {
	if helperDir == "" {
		helperDir = defaultHelperDir
	}

	fromDir := path.Dir(path.Clean(filepathToSlash(fromPath)))
	target := path.Join(filepathToSlash(helperDir), documentHelperBase)

	specifier := relModulePath(fromDir, target)

	return fmt.Sprintf("import { asDocument } from '%s';", specifier)
}

// relModulePath computes a relative module specifier from dir to target,
// always prefixed for module resolution ("./" or "../").
func relModulePath(fromDir, target string) string {
	fromParts := splitPath(fromDir)
	targetParts := splitPath(target)

	common := 0
	for common < len(fromParts) && common < len(targetParts) && fromParts[common] == targetParts[common] {
		common++
	}

	var parts []string
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}

	parts = append(parts, targetParts[common:]...)

	specifier := path.Join(parts...)
	if !strings.HasPrefix(specifier, ".") {
		specifier = "./" + specifier
	}

	return specifier
}

func splitPath(p string) []string {
	p = path.Clean(p)
	if p == "." || p == "/" {
		return nil
	}

	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// sortedDescending orders records by line then column, descending, so edits
// on the same line do not shift the coordinates of edits yet to be applied.
func sortedDescending(records []diagnose.Record) []diagnose.Record {
	sorted := make([]diagnose.Record, len(records))
	copy(sorted, records)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line > sorted[j].Line
		}

		return sorted[i].Column > sorted[j].Column
	})

	return sorted
}
