package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "reports/tasks_report.md", []byte("# Task Report")))

	data, err := s.Read(ctx, "reports/tasks_report.md")
	require.NoError(t, err)
	assert.Equal(t, "# Task Report", string(data))

	exists, err := s.Exists(ctx, "reports/tasks_report.md")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "reports/tasks_report.md"))
	err = s.Delete(ctx, "reports/tasks_report.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "tasks_report.md", []byte("a")))
	require.NoError(t, s.Write(ctx, "tasks_report.txt", []byte("b")))
	require.NoError(t, s.Write(ctx, "sub/nested.md", []byte("c")))

	paths, err := s.List(ctx, "")
	require.NoError(t, err)
	// Directories are not descended into.
	assert.ElementsMatch(t, []string{"tasks_report.md", "tasks_report.txt"}, paths)

	paths, err = s.List(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalStorage_Stat(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "tasks_report.md", []byte("a")))

	old := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report.md"), old, old))

	fi, err := s.Stat(ctx, "tasks_report.md")
	require.NoError(t, err)
	assert.WithinDuration(t, old, fi.ModTime, time.Second)

	_, err = s.Stat(ctx, "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RenamePreservesModTime(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "tasks_report.md", []byte("a")))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "tasks_report.md"), old, old))

	require.NoError(t, s.Rename(ctx, "tasks_report.md", "tasks_report_2026_08_23.md"))

	exists, err := s.Exists(ctx, "tasks_report.md")
	require.NoError(t, err)
	assert.False(t, exists)

	fi, err := s.Stat(ctx, "tasks_report_2026_08_23.md")
	require.NoError(t, err)
	assert.WithinDuration(t, old, fi.ModTime, time.Second)

	err = s.Rename(ctx, "missing.md", "whatever.md")
	assert.ErrorIs(t, err, ErrNotFound)
}
