// Package archive computes deterministic target paths under the archive
// root and executes conflict-safe move/copy placements.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsonderegger/dokusort/constants"
	"github.com/rsonderegger/dokusort/internal/entity"
)

// ConflictPolicy selects what happens when the planned filename exists.
type ConflictPolicy string

const (
	PolicyAsk        ConflictPolicy = "ask"
	PolicyAutoSuffix ConflictPolicy = "autoSuffix"
	PolicyOverwrite  ConflictPolicy = "overwrite"
)

// Mode selects how the file reaches its target.
type Mode string

const (
	ModeMove Mode = "move"
	ModeCopy Mode = "copy"
)

// Result records a successful placement.
type Result struct {
	SourcePath string
	FinalPath  string
	WasCopied  bool
}

// Planner executes placements. It holds no state beyond a logger; every
// call is a pure function of metadata, archive root and the disk.
type Planner struct {
	logger *slog.Logger
}

func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

// Sanitize removes filesystem-hostile characters, trims whitespace, and
// falls back to "Unbenannt" when nothing remains. Spaces survive.
// Idempotent.
func Sanitize(s string) string {
	out := strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', '?', '%', '*', '|', '"', '<', '>':
			return -1
		}
		return r
	}, s)
	out = strings.TrimSpace(out)
	if out == "" {
		return constants.UnnamedComponent
	}
	return out
}

// PlannedTarget computes the deterministic target directory and candidate
// filename for meta under archiveRoot:
//
//	<root>/<correspondent>/<year>/<yyyyMMdd>_<docType>.pdf
func PlannedTarget(meta entity.Metadata, archiveRoot string) (targetDir, candidate string) {
	corr := meta.Correspondent
	if corr == "" {
		corr = constants.UnknownCorrespondent
	}
	docType := meta.DocType
	if docType == "" {
		docType = constants.DefaultDocumentType
	}

	targetDir = filepath.Join(archiveRoot, Sanitize(corr), meta.Year())
	candidate = filepath.Join(targetDir, meta.Date.Format("20060102")+"_"+Sanitize(docType)+".pdf")
	return targetDir, candidate
}

// Place moves or copies sourcePath to its planned target. Conflicts branch
// on policy: PolicyAsk surfaces a NameConflictError for the caller to
// resolve, PolicyAutoSuffix probes "<base> (2).pdf", "(3)", ... until a
// free name is found, PolicyOverwrite best-effort-deletes the existing
// file first. With ModeCopy and deleteOriginal, a failed delete returns
// the Result together with a DeleteOriginalError: the copy stands.
func (p *Planner) Place(
	ctx context.Context,
	sourcePath string,
	meta entity.Metadata,
	archiveRoot string,
	mode Mode,
	deleteOriginal bool,
	policy ConflictPolicy,
) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	targetDir, candidate := PlannedTarget(meta, archiveRoot)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Result{}, &CannotCreateDirError{Dir: targetDir, Err: err}
	}

	finalPath := candidate
	if fileExists(finalPath) {
		switch policy {
		case PolicyAsk:
			return Result{}, &NameConflictError{Path: finalPath}
		case PolicyAutoSuffix:
			base := strings.TrimSuffix(filepath.Base(candidate), ".pdf")
			for i := 2; ; i++ {
				probe := filepath.Join(targetDir, fmt.Sprintf("%s (%d).pdf", base, i))
				if !fileExists(probe) {
					finalPath = probe
					break
				}
			}
		case PolicyOverwrite:
			// best effort; a surviving file makes the move/copy fail naturally
			_ = os.Remove(finalPath)
		}
	}

	switch mode {
	case ModeCopy:
		if err := copyFile(sourcePath, finalPath); err != nil {
			return Result{}, &CopyError{Err: err}
		}
		result := Result{SourcePath: sourcePath, FinalPath: finalPath, WasCopied: true}
		if deleteOriginal {
			if err := os.Remove(sourcePath); err != nil {
				p.logger.Warn("archive.delete_original.failed", "source", sourcePath, "error", err)
				return result, &DeleteOriginalError{Err: err}
			}
		}
		p.logger.Info("archive.placed", "source", sourcePath, "target", finalPath, "copied", true)
		return result, nil

	default: // ModeMove
		if err := os.Rename(sourcePath, finalPath); err != nil {
			return Result{}, &MoveError{Err: err}
		}
		p.logger.Info("archive.placed", "source", sourcePath, "target", finalPath, "copied", false)
		return Result{SourcePath: sourcePath, FinalPath: finalPath, WasCopied: false}, nil
	}
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
