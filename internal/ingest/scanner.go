// Package ingest discovers incoming documents: one-shot inbox scans and
// a filesystem watcher for continuous operation.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rsonderegger/dokusort/constants"
	"github.com/rsonderegger/dokusort/internal/entity"
)

// Stats summarizes one inbox scan.
type Stats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

// AllowedExt reports whether an extension is in the allowed set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden reports whether a path's base name starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Scanner reads documents from the inbox folder.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// ScanInbox lists the PDFs sitting directly in dir (no recursion, mirrors
// a flat scanner drop folder), hashing each file and dropping duplicate
// content within the scan. Results are sorted by file name.
func (s *Scanner) ScanInbox(ctx context.Context, dir string) ([]entity.Document, Stats, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, Stats{}, errors.New("inbox dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read inbox: %w", err)
	}

	var stats Stats
	seen := map[string]struct{}{}
	var docs []entity.Document

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return docs, stats, err
		}
		stats.Scanned++
		if e.IsDir() || IsHidden(e.Name()) || !AllowedExt(filepath.Ext(e.Name())) {
			continue
		}
		stats.Matched++

		path := filepath.Join(dir, e.Name())
		doc, err := s.ReadDocument(path)
		if err != nil {
			s.logger.Warn("ingest.scan.file_failed", "path", path, "error", err)
			stats.Failed++
			continue
		}
		if _, dup := seen[doc.HashHex]; dup {
			stats.Deduplicated++
			continue
		}
		seen[doc.HashHex] = struct{}{}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return strings.ToLower(filepath.Base(docs[i].Path)) < strings.ToLower(filepath.Base(docs[j].Path))
	})
	return docs, stats, nil
}

// ReadDocument builds a Document for a single file, hashing its content.
func (s *Scanner) ReadDocument(path string) (entity.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return entity.Document{}, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return entity.Document{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("ingest.close_failed", "path", abs, "error", err)
		}
	}()

	st, err := f.Stat()
	if err != nil {
		return entity.Document{}, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return entity.Document{}, fmt.Errorf("hash: %w", err)
	}

	return entity.Document{
		ID:         uuid.New(),
		Path:       abs,
		SizeBytes:  st.Size(),
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		DetectedAt: time.Now().UTC(),
	}, nil
}
