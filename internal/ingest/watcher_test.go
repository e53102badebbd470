package ingest

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPath(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestStartWatcherEmitsNewPDF(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, _, err := StartWatcher(ctx, WatchConfig{Root: dir, Debounce: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0o644))

	assert.Equal(t, path, waitForPath(t, files))
}

func TestStartWatcherInitialScan(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, _, err := StartWatcher(ctx, WatchConfig{Root: dir, InitialScan: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, existing, waitForPath(t, files))
}

func TestStartWatcherMissingRoot(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{Root: ""}, nil)
	assert.Error(t, err)

	_, _, err = StartWatcher(context.Background(), WatchConfig{Root: filepath.Join(t.TempDir(), "nope")}, nil)
	assert.Error(t, err)
}

func TestStartWatcherClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	files, errs, err := StartWatcher(ctx, WatchConfig{Root: dir}, nil)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-files:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("files channel did not close")
	}
	select {
	case _, open := <-errs:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("errors channel did not close")
	}
}

func TestFlushPendingWarnsWhenConsumerLags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	evCh := make(chan string, 1)
	pending := map[string]struct{}{
		"/inbox/a.pdf": {},
		"/inbox/b.pdf": {},
	}
	flushPending(pending, evCh, logger)

	assert.Empty(t, pending, "pending drains even when paths are dropped")
	assert.Len(t, evCh, 1)
	assert.Contains(t, buf.String(), "event_dropped")
}
