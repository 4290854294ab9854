package synth_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/patterns"
	"github.com/Sumatoshi-tech/recheck/internal/synth"
)

func TestEnsure_WritesOnce(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "utils")
	s := synth.New(dir, nil)
	s.RegisterTemplate("helper", synth.Template{Filename: "helper.ts", Source: "export const x = 1;\n"})

	require.NoError(t, s.Ensure("helper"))
	assert.True(t, s.Materialized("helper"))

	content, err := os.ReadFile(filepath.Join(dir, "helper.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export const x = 1;\n", string(content))
}

func TestEnsure_PreservesExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "helper.ts")
	require.NoError(t, os.WriteFile(existing, []byte("// user edited\n"), 0o644))

	s := synth.New(dir, nil)
	s.RegisterTemplate("helper", synth.Template{Filename: "helper.ts", Source: "export const x = 1;\n"})

	require.NoError(t, s.Ensure("helper"))

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "// user edited\n", string(content))
}

func TestEnsure_UnknownDependency(t *testing.T) {
	t.Parallel()

	s := synth.New(t.TempDir(), nil)

	err := s.Ensure("missing")
	require.ErrorIs(t, err, synth.ErrUnknownUtility)
	assert.False(t, s.Materialized("missing"))
}

func TestEnsure_Concurrent(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "utils")
	s := synth.New(dir, nil)
	s.RegisterTemplate("helper", synth.Template{Filename: "helper.ts", Source: "export const x = 1;\n"})

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, s.Ensure("helper"))
		}()
	}

	wg.Wait()
	assert.True(t, s.Materialized("helper"))
}

func TestRegisterDefaultTemplates(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "utils")
	s := synth.New(dir, nil)
	synth.RegisterDefaultTemplates(s)

	require.NoError(t, s.Ensure(patterns.UtilityDocumentHelper))

	content, err := os.ReadFile(filepath.Join(dir, "document.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "asDocument")
}
