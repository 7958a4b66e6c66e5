// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rmf/meshconv/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.HistoryConfig{DBDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func writeTemp(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

func TestRecordRunAndList(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()
	src := writeTemp(t, dir, "model.obj")

	var report types.Report
	report.Record(types.Outcome{Source: src, Output: filepath.Join(dir, "model.glb"), Status: types.StatusConverted})
	report.Record(types.Outcome{
		Source: filepath.Join(dir, "broken.obj"), Output: filepath.Join(dir, "broken.glb"),
		Status: types.StatusImportFailed, Error: "malformed obj",
	})

	runID, err := store.RecordRun(report, "/out", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "/out", runs[0].OutDir)
	assert.Equal(t, 1, runs[0].Converted)
	assert.Equal(t, 1, runs[0].Failed)

	files, err := store.RunFiles(runID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "malformed obj", files[0].Error) // broken.obj sorts first
	assert.Equal(t, types.StatusConverted, files[1].Status)
}

func TestRunsOrderedNewestFirst(t *testing.T) {
	store := testStore(t)

	var report types.Report
	report.Record(types.Outcome{Source: "/a.obj", Output: "/a.glb", Status: types.StatusConverted})

	first, err := store.RecordRun(report, "", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	second, err := store.RecordRun(report, "", time.Now())
	require.NoError(t, err)

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestShouldSkip(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()
	src := writeTemp(t, dir, "model.obj")
	dst := filepath.Join(dir, "model.glb")

	// Nothing recorded yet.
	assert.False(t, store.ShouldSkip(src, dst))

	var report types.Report
	report.Record(types.Outcome{Source: src, Output: dst, Status: types.StatusConverted})
	_, err := store.RecordRun(report, "", time.Now())
	require.NoError(t, err)

	// Recorded, but the output file is missing.
	assert.False(t, store.ShouldSkip(src, dst))

	// Output exists and the source is unchanged.
	require.NoError(t, os.WriteFile(dst, []byte("glb"), 0o644))
	assert.True(t, store.ShouldSkip(src, dst))

	// Touching the source invalidates the skip.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(src, later, later))
	assert.False(t, store.ShouldSkip(src, dst))
}

func TestShouldSkipIgnoresFailedRuns(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()
	src := writeTemp(t, dir, "model.obj")
	dst := filepath.Join(dir, "model.glb")
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

	var report types.Report
	report.Record(types.Outcome{Source: src, Output: dst, Status: types.StatusExportFailed, Error: "disk full"})
	_, err := store.RecordRun(report, "", time.Now())
	require.NoError(t, err)

	assert.False(t, store.ShouldSkip(src, dst), "a failed conversion never justifies a skip")
}
