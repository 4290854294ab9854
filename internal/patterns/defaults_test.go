package patterns_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
	"github.com/Sumatoshi-tech/recheck/internal/patterns"
)

func defaultRule(t *testing.T, name string) patterns.Rule {
	t.Helper()

	rule, ok := patterns.DefaultRegistry().Lookup(name)
	require.True(t, ok, name)

	return rule
}

func TestDefaultRegistry_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, rule := range patterns.DefaultRegistry().Rules() {
		names = append(names, rule.Name)
	}

	// Coordinate-addressed rules first; objectid-access last because its
	// import insertion shifts the line numbers diagnostics point at.
	assert.Equal(t, []string{
		"implicit-any-param",
		"possibly-undefined",
		"possibly-null",
		"unknown-catch",
		"objectid-access",
	}, names)
}

func TestObjectIDAccess_RewritesAndImports(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "objectid-access")
	assert.Equal(t, []string{patterns.UtilityDocumentHelper}, rule.Requires)
	assert.True(t, rule.Match("Property '_id' does not exist on type 'User'.", "TS2339"))

	text := "const id = user._id;\n"
	fctx := patterns.FileContext{Path: "src/billing/invoice.ts"}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)

	assert.Contains(t, out, "asDocument(user)._id")
	assert.Contains(t, out, "import { asDocument } from '../utils/document';")
}

func TestObjectIDAccess_Idempotent(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "objectid-access")
	fctx := patterns.FileContext{Path: "src/billing/invoice.ts"}

	once, err := rule.Transform("const id = user._id;\n", fctx)
	require.NoError(t, err)

	twice, err := rule.Transform(once, fctx)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestObjectIDAccess_ImportFollowsHelperDir(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "objectid-access")
	fctx := patterns.FileContext{
		Path:      "src/billing/invoice.ts",
		HelperDir: "lib/helpers",
	}

	out, err := rule.Transform("const id = user._id;\n", fctx)
	require.NoError(t, err)
	assert.Contains(t, out, "import { asDocument } from '../../lib/helpers/document';")
	assert.NotContains(t, out, "utils/document")
}

func TestObjectIDAccess_ImportFromRootFile(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "objectid-access")

	out, err := rule.Transform("const id = doc._id;\n", patterns.FileContext{Path: "index.ts"})
	require.NoError(t, err)
	assert.Contains(t, out, "import { asDocument } from './src/utils/document';")
}

func TestObjectIDAccess_ImportAfterLeadingComments(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "objectid-access")

	text := "// Copyright header.\n// Second line.\nconst id = user._id;\n"

	out, err := rule.Transform(text, patterns.FileContext{Path: "src/a/b.ts"})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "// Copyright header.", lines[0])
	assert.Equal(t, "// Second line.", lines[1])
	assert.Contains(t, lines[2], "import { asDocument }")
}

func TestImplicitAnyParam(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "implicit-any-param")
	assert.True(t, rule.Match("anything", "TS7006"))
	assert.True(t, rule.Match("Parameter 'req' implicitly has an 'any' type.", ""))

	text := "function handler(req, res) {\n  return res;\n}\n"
	fctx := patterns.FileContext{
		Path: "src/api/handler.ts",
		Records: []diagnose.Record{
			{Line: 1, Column: 18, Code: "TS7006", Message: "Parameter 'req' implicitly has an 'any' type."},
			{Line: 1, Column: 23, Code: "TS7006", Message: "Parameter 'res' implicitly has an 'any' type."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Contains(t, out, "function handler(req: any, res: any) {")
}

func TestImplicitAnyParam_SkipsAlreadyAnnotated(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "implicit-any-param")

	text := "function handler(req: Request) {\n}\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 1, Column: 18, Message: "Parameter 'req' implicitly has an 'any' type."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestPossiblyUndefined(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "possibly-undefined")
	assert.True(t, rule.Match("", "TS2532"))
	assert.True(t, rule.Match("", "TS18048"))
	assert.False(t, rule.Match("", "TS2531"))

	text := "const name = user.profile.name;\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 1, Column: 14, Code: "TS2532", Message: "Object is possibly 'undefined'."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Equal(t, "const name = user!.profile.name;\n", out)
}

func TestNonNullAssert_DescendingApplication(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "possibly-undefined")

	// Two diagnostics on one line: applying in ascending column order would
	// shift the second coordinate.
	text := "const v = aa.bb + cc.dd;\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 1, Column: 11, Code: "TS2532", Message: "Object is possibly 'undefined'."},
			{Line: 1, Column: 19, Code: "TS2532", Message: "Object is possibly 'undefined'."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Equal(t, "const v = aa!.bb + cc!.dd;\n", out)
}

func TestPossiblyNull(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "possibly-null")
	assert.True(t, rule.Match("", "TS2531"))
	assert.True(t, rule.Match("", "TS18047"))

	text := "const el = document.getElementById('x');\nel.focus();\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 2, Column: 1, Code: "TS2531", Message: "Object is possibly 'null'."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Contains(t, out, "el!.focus();")
}

func TestUnknownCatch(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "unknown-catch")
	assert.True(t, rule.Match("", "TS18046"))
	assert.True(t, rule.Match("'e' is of type 'unknown'.", ""))

	text := "try {\n  run();\n} catch (e) {\n  console.log(e.message);\n}\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 3, Column: 10, Code: "TS18046", Message: "'e' is of type 'unknown'."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Contains(t, out, "catch (e: any) {")
}

func TestDefaultRegistry_CoordinateRulesApplyBeforeImportInsertion(t *testing.T) {
	t.Parallel()

	registry := patterns.DefaultRegistry()

	text := "const id = user._id;\nconst name = user.profile.name;\n"
	records := []diagnose.Record{
		{Line: 1, Column: 12, Code: "TS2339", Message: "Property '_id' does not exist on type 'User'. (_id access)"},
		{Line: 2, Column: 14, Code: "TS2532", Message: "Object is possibly 'undefined'."},
	}

	matched := registry.Classify(records)
	require.Equal(t, []string{"possibly-undefined", "objectid-access"}, matched)

	fctx := patterns.FileContext{Path: "src/billing/invoice.ts", Records: records}

	out := text
	for _, name := range matched {
		rule, ok := registry.Lookup(name)
		require.True(t, ok, name)

		var err error
		out, err = rule.Transform(out, fctx)
		require.NoError(t, err)
	}

	// The non-null assertion lands on the line its diagnostic addressed,
	// unshifted by the import objectid-access prepends afterwards.
	assert.Contains(t, out, "const name = user!.profile.name;")
	assert.Contains(t, out, "asDocument(user)._id")
	assert.Contains(t, out, "import { asDocument } from '../utils/document';")
}

func TestTransforms_OutOfRangeLineIsNoOp(t *testing.T) {
	t.Parallel()

	rule := defaultRule(t, "possibly-undefined")

	text := "const a = b.c;\n"
	fctx := patterns.FileContext{
		Records: []diagnose.Record{
			{Line: 99, Column: 1, Code: "TS2532", Message: "Object is possibly 'undefined'."},
		},
	}

	out, err := rule.Transform(text, fctx)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}
