package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskbrief/taskbrief/pkg/storage"
)

func newTestArchiver(t *testing.T) (*Archiver, storage.Storage, string) {
	t.Helper()
	base := t.TempDir()
	store, err := storage.NewLocalStorage(base)
	require.NoError(t, err)
	return NewArchiver(store, 7*24*time.Hour, time.Now), store, base
}

func writePair(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, FileMD, []byte("# md")))
	require.NoError(t, store.Write(ctx, FileTXT, []byte("txt")))
}

func TestRotate_MovesCurrentPair(t *testing.T) {
	a, store, _ := newTestArchiver(t)
	ctx := context.Background()
	writePair(t, store)

	require.NoError(t, a.RotateAndCleanup(ctx))

	stamp := time.Now().Format(archiveDateFormat)
	for _, path := range []string{"tasks_report_" + stamp + ".md", "tasks_report_" + stamp + ".txt"} {
		exists, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}
	for _, path := range []string{FileMD, FileTXT} {
		exists, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
}

func TestRotate_SecondCallSameDayIsNoop(t *testing.T) {
	a, store, _ := newTestArchiver(t)
	ctx := context.Background()
	writePair(t, store)

	require.NoError(t, a.RotateAndCleanup(ctx))
	require.NoError(t, a.RotateAndCleanup(ctx))

	paths, err := store.List(ctx, "")
	require.NoError(t, err)
	// One archive copy per format, not two.
	assert.Len(t, paths, 2)
}

func TestRotate_NoCurrentPair(t *testing.T) {
	a, _, _ := newTestArchiver(t)
	assert.NoError(t, a.RotateAndCleanup(context.Background()))
}

func TestCleanup_RetiresOldArchives(t *testing.T) {
	a, store, base := newTestArchiver(t)
	ctx := context.Background()

	old := time.Now().Add(-8 * 24 * time.Hour)
	recent := time.Now().Add(-6 * 24 * time.Hour)

	require.NoError(t, store.Write(ctx, "tasks_report_2026_08_15.md", []byte("old")))
	require.NoError(t, store.Write(ctx, "tasks_report_2026_08_15.txt", []byte("old")))
	require.NoError(t, store.Write(ctx, "tasks_report_2026_08_17.md", []byte("recent")))
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report_2026_08_15.md"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report_2026_08_15.txt"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report_2026_08_17.md"), recent, recent))

	require.NoError(t, a.RotateAndCleanup(ctx))

	for _, path := range []string{"tasks_report_2026_08_15.md", "tasks_report_2026_08_15.txt"} {
		exists, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
	exists, err := store.Exists(ctx, "tasks_report_2026_08_17.md")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCleanup_SweepsWithoutRotation(t *testing.T) {
	// No current pair exists; the sweep still runs.
	a, store, base := newTestArchiver(t)
	ctx := context.Background()

	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, store.Write(ctx, "tasks_report_2026_07_01.txt", []byte("old")))
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report_2026_07_01.txt"), old, old))

	require.NoError(t, a.RotateAndCleanup(ctx))

	exists, err := store.Exists(ctx, "tasks_report_2026_07_01.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCleanup_IgnoresUnrelatedFiles(t *testing.T) {
	a, store, base := newTestArchiver(t)
	ctx := context.Background()

	old := time.Now().Add(-30 * 24 * time.Hour)
	for _, path := range []string{"notion-projects.json", "sample_task.json", "tasks_report.md"} {
		require.NoError(t, store.Write(ctx, path, []byte("keep")))
		require.NoError(t, os.Chtimes(filepath.Join(base, path), old, old))
	}

	require.NoError(t, a.RotateAndCleanup(ctx))

	// tasks_report.md was rotated (it is the current report), but nothing
	// was deleted outright.
	exists, err := store.Exists(ctx, "notion-projects.json")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.Exists(ctx, "sample_task.json")
	require.NoError(t, err)
	assert.True(t, exists)
}
