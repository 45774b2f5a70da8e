package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestRotate_MovesYesterdaysLogAside(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "todo.log")
	writeLog(t, path, now.AddDate(0, 0, -1))

	require.NoError(t, rotate(path, now, Backups))
	assert.NoFileExists(t, path)
	assert.FileExists(t, path+".2026-10-17")
}

func TestRotate_KeepsTodaysLog(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "todo.log")
	writeLog(t, path, time.Date(2026, 10, 18, 0, 0, 1, 0, time.Local))

	require.NoError(t, rotate(path, now, Backups))
	assert.FileExists(t, path)

	require.NoError(t, rotate(filepath.Join(t.TempDir(), "missing.log"), now, Backups))
}

func TestRotate_PrunesOldBackups(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.log")
	for i := 2; i <= 7; i++ {
		writeLog(t, path+"."+now.AddDate(0, 0, -i).Format(backupLayout), now)
	}
	other := filepath.Join(dir, "todo.log.lock")
	writeLog(t, other, now)
	writeLog(t, path, now.AddDate(0, 0, -1))

	require.NoError(t, rotate(path, now, Backups))

	backups, err := filepath.Glob(path + ".2026-*")
	require.NoError(t, err)
	assert.Equal(t, []string{
		path + ".2026-10-13",
		path + ".2026-10-14",
		path + ".2026-10-15",
		path + ".2026-10-16",
		path + ".2026-10-17",
	}, backups)
	assert.FileExists(t, other)
}

func TestNew_RotatesStaleLogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "todo.log")
	stale := time.Now().AddDate(0, 0, -3)
	writeLog(t, path, stale)

	_, closer, err := New(Options{Console: io.Discard, File: path})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	assert.FileExists(t, path+"."+stale.Format(backupLayout))
	assert.FileExists(t, path)
}
