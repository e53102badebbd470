package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanInbox(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("doc b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.pdf"), []byte("doc a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.pdf"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	s := NewScanner(nil)
	docs, stats, err := s.ScanInbox(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	// sorted case-insensitively by file name
	assert.Equal(t, "A.pdf", filepath.Base(docs[0].Path))
	assert.Equal(t, "b.pdf", filepath.Base(docs[1].Path))
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
	assert.NotEmpty(t, docs[0].HashHex)
	assert.Equal(t, int64(5), docs[0].SizeBytes)

	assert.Equal(t, uint32(5), stats.Scanned)
	assert.Equal(t, uint32(2), stats.Matched)
	assert.Equal(t, uint32(0), stats.Deduplicated)
}

func TestScanInboxDedupByContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.pdf"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.pdf"), []byte("same"), 0o644))

	s := NewScanner(nil)
	docs, stats, err := s.ScanInbox(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, uint32(1), stats.Deduplicated)
}

func TestScanInboxMissingDir(t *testing.T) {
	s := NewScanner(nil)
	_, _, err := s.ScanInbox(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	_, _, err = s.ScanInbox(context.Background(), "  ")
	assert.Error(t, err)
}

func TestUniqueDestination(t *testing.T) {
	dir := t.TempDir()
	first := UniqueDestination(dir, "scan.pdf")
	assert.Equal(t, filepath.Join(dir, "scan.pdf"), first)

	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))
	second := UniqueDestination(dir, "scan.pdf")
	assert.Equal(t, filepath.Join(dir, "scan (1).pdf"), second)

	require.NoError(t, os.WriteFile(second, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "scan (2).pdf"), UniqueDestination(dir, "scan.pdf"))
}

func TestImportFiles(t *testing.T) {
	inbox := t.TempDir()
	ext := t.TempDir()
	pdf := filepath.Join(ext, "statement.pdf")
	txt := filepath.Join(ext, "readme.txt")
	require.NoError(t, os.WriteFile(pdf, []byte("doc"), 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("skip"), 0o644))

	imported, err := ImportFiles(inbox, []string{pdf, txt})
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.FileExists(t, filepath.Join(inbox, "statement.pdf"))
}
