package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/scan"
)

const directive = "// @ts-nocheck"

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newScanner(root string) *scan.Scanner {
	return scan.New(root, directive, scan.Options{
		Excludes:   []string{"node_modules", "dist"},
		Extensions: []string{".ts", ".tsx"},
	})
}

func relPaths(items []scan.WorkItem) []string {
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = filepath.ToSlash(item.Path)
	}

	return paths
}

func TestScan_FindsSuppressedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/billing/invoice.ts", directive+"\nexport const a = 1;\n")
	writeFile(t, root, "src/billing/clean.ts", "export const b = 2;\n")
	writeFile(t, root, "src/auth/login.tsx", "// comment\n"+directive+"\nexport const c = 3;\n")

	items, err := newScanner(root).Scan(scan.Filters{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/billing/invoice.ts", "src/auth/login.tsx"}, relPaths(items))

	for _, item := range items {
		assert.True(t, item.HasDirective)
		assert.True(t, filepath.IsAbs(item.AbsPath))
	}
}

func TestScan_IgnoresDirectiveBeyondLeadingLines(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	content := ""
	for i := 0; i < 20; i++ {
		content += "// filler\n"
	}

	content += directive + "\n"
	writeFile(t, root, "src/late.ts", content)

	items, err := newScanner(root).Scan(scan.Filters{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScan_SkipsExcludedAndVendorDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "node_modules/pkg/index.ts", directive+"\n")
	writeFile(t, root, "dist/out.ts", directive+"\n")
	writeFile(t, root, "vendor/lib.ts", directive+"\n")
	writeFile(t, root, "src/keep.ts", directive+"\n")

	items, err := newScanner(root).Scan(scan.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/keep.ts"}, relPaths(items))
}

func TestScan_SkipsTestFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/billing/invoice.test.ts", directive+"\n")
	writeFile(t, root, "src/billing/invoice.spec.tsx", directive+"\n")
	writeFile(t, root, "src/billing/invoice.ts", directive+"\n")

	items, err := newScanner(root).Scan(scan.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/billing/invoice.ts"}, relPaths(items))
}

func TestScan_SkipsOtherExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/app.js", directive+"\n")
	writeFile(t, root, "src/readme.md", directive+"\n")

	items, err := newScanner(root).Scan(scan.Filters{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScan_Filters(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/billing/invoice.ts", directive+"\n")
	writeFile(t, root, "src/auth/login.ts", directive+"\n")

	items, err := newScanner(root).Scan(scan.Filters{Module: "billing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/billing/invoice.ts"}, relPaths(items))

	items, err = newScanner(root).Scan(scan.Filters{File: "login"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/auth/login.ts"}, relPaths(items))

	items, err = newScanner(root).Scan(scan.Filters{Module: "billing", File: "login"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScan_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := newScanner(filepath.Join(t.TempDir(), "absent")).Scan(scan.Filters{})
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	t.Parallel()

	items := []scan.WorkItem{
		{Path: "src/billing/a.ts", Module: "billing"},
		{Path: "src/auth/b.ts", Module: "auth"},
	}

	kept := scan.Apply(items, scan.Filters{Module: "auth"})
	require.Len(t, kept, 1)
	assert.Equal(t, "src/auth/b.ts", kept[0].Path)

	assert.Len(t, scan.Apply(items, scan.Filters{}), 2)
	assert.Empty(t, scan.Apply(items, scan.Filters{File: "missing"}))
}

func TestModuleOf(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"index.ts":                  scan.RootModule,
		"server/app.ts":             "server",
		"src/billing/invoice.ts":    "billing",
		"src/top.ts":                "src",
		"lib/auth/token.ts":         "auth",
		"packages/core/util/x.ts":   "core",
		"services/api/handlers.tsx": "services",
	}

	for rel, want := range cases {
		assert.Equal(t, want, scan.ModuleOf(rel), rel)
	}
}

func TestHasDirective(t *testing.T) {
	t.Parallel()

	assert.True(t, scan.HasDirective([]byte("  "+directive+"  \ncode\n"), directive))
	assert.False(t, scan.HasDirective([]byte("// @ts-nocheck extra\ncode\n"), directive))
	assert.False(t, scan.HasDirective([]byte(""), directive))
}
