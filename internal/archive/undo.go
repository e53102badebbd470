package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MoveRecord remembers one executed move so it can be reversed.
type MoveRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UndoLog keeps the most recent move. Registering a new move replaces the
// previous one; only the last placement can be undone. With a backing path
// the record survives process restarts, so the CLI can reverse a placement
// the daemon made.
type UndoLog struct {
	mu     sync.Mutex
	last   *MoveRecord
	path   string
	logger *slog.Logger
}

func NewUndoLog() *UndoLog {
	return &UndoLog{logger: slog.Default()}
}

// NewFileUndoLog builds an UndoLog persisted at path, loading a record a
// previous process left behind.
func NewFileUndoLog(path string, logger *slog.Logger) (*UndoLog, error) {
	if path == "" {
		return nil, errors.New("undo log path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create undo log dir: %w", err)
	}

	u := &UndoLog{path: path, logger: logger}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read undo log: %w", err)
	}
	var rec MoveRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode undo log: %w", err)
	}
	if rec.From != "" && rec.To != "" {
		u.last = &rec
	}
	return u, nil
}

// RegisterMove records a completed move as the undo candidate.
func (u *UndoLog) RegisterMove(from, to string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.last = &MoveRecord{From: from, To: to}
	u.persist()
}

// Last returns the pending undo candidate, if any.
func (u *UndoLog) Last() (MoveRecord, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return MoveRecord{}, false
	}
	return *u.last, true
}

// UndoLastMove moves the file back to where it came from and returns the
// restored path. If the original name is taken in the meantime, " (restored)"
// is appended before the extension. A no-op when nothing is registered.
func (u *UndoLog) UndoLastMove() (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return "", nil
	}

	backTarget := u.last.From
	if fileExists(backTarget) {
		ext := filepath.Ext(backTarget)
		base := strings.TrimSuffix(filepath.Base(backTarget), ext)
		backTarget = filepath.Join(filepath.Dir(backTarget), base+" (restored)"+ext)
	}

	if err := os.Rename(u.last.To, backTarget); err != nil {
		return "", fmt.Errorf("undo move: %w", err)
	}
	u.last = nil
	u.persist()
	return backTarget, nil
}

// persist saves the current record. Callers hold the mutex; a memory-only
// log skips out.
func (u *UndoLog) persist() {
	if u.path == "" {
		return
	}
	if u.last == nil {
		if err := os.Remove(u.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			u.logger.Warn("archive.undo.remove_failed", "path", u.path, "error", err)
		}
		return
	}
	raw, err := json.MarshalIndent(u.last, "", "  ")
	if err != nil {
		u.logger.Error("archive.undo.encode_failed", "error", err)
		return
	}
	tmp, err := os.CreateTemp(filepath.Dir(u.path), ".undo-*.json")
	if err != nil {
		u.logger.Error("archive.undo.persist_failed", "error", err)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		u.logger.Error("archive.undo.persist_failed", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		u.logger.Error("archive.undo.persist_failed", "error", err)
		return
	}
	if err := os.Rename(tmp.Name(), u.path); err != nil {
		u.logger.Error("archive.undo.persist_failed", "error", err)
	}
}
