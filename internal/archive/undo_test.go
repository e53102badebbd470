package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoLastMove(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "inbox", "scan.pdf")
	to := filepath.Join(dir, "archive", "scan.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(from), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(to), 0o755))
	require.NoError(t, os.WriteFile(to, []byte("moved"), 0o644))

	u := NewUndoLog()
	u.RegisterMove(from, to)

	restored, err := u.UndoLastMove()
	require.NoError(t, err)
	assert.Equal(t, from, restored)
	assert.FileExists(t, from)
	assert.NoFileExists(t, to)

	_, ok := u.Last()
	assert.False(t, ok, "undo consumes the record")
}

func TestUndoLastMoveOriginalNameTaken(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "scan.pdf")
	to := filepath.Join(dir, "archived.pdf")
	require.NoError(t, os.WriteFile(from, []byte("newer file"), 0o644))
	require.NoError(t, os.WriteFile(to, []byte("moved"), 0o644))

	u := NewUndoLog()
	u.RegisterMove(from, to)

	restored, err := u.UndoLastMove()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scan (restored).pdf"), restored)
	assert.FileExists(t, from, "newer file stays put")
	assert.FileExists(t, restored)
}

func TestUndoWithoutRegisteredMove(t *testing.T) {
	u := NewUndoLog()
	restored, err := u.UndoLastMove()
	assert.NoError(t, err)
	assert.Empty(t, restored)
}

func TestFileUndoLogSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "inbox", "scan.pdf")
	to := filepath.Join(dir, "archive", "scan.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(from), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(to), 0o755))
	require.NoError(t, os.WriteFile(to, []byte("moved"), 0o644))

	logPath := filepath.Join(dir, "undo.json")
	writer, err := NewFileUndoLog(logPath, nil)
	require.NoError(t, err)
	writer.RegisterMove(from, to)

	// a fresh log on the same path sees the record
	reader, err := NewFileUndoLog(logPath, nil)
	require.NoError(t, err)
	rec, ok := reader.Last()
	require.True(t, ok)
	assert.Equal(t, from, rec.From)
	assert.Equal(t, to, rec.To)

	restored, err := reader.UndoLastMove()
	require.NoError(t, err)
	assert.Equal(t, from, restored)
	assert.FileExists(t, from)
	assert.NoFileExists(t, logPath, "consumed record clears the file")
}

func TestFileUndoLogFreshPath(t *testing.T) {
	u, err := NewFileUndoLog(filepath.Join(t.TempDir(), "state", "undo.json"), nil)
	require.NoError(t, err)
	_, ok := u.Last()
	assert.False(t, ok)
}
