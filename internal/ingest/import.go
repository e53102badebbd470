package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UniqueDestination returns a path in dir for proposedName that does not
// collide with an existing file, probing "name (1).pdf", "(2)", ...
func UniqueDestination(dir, proposedName string) string {
	candidate := filepath.Join(dir, proposedName)
	ext := filepath.Ext(proposedName)
	base := strings.TrimSuffix(proposedName, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
	}
}

// ImportFiles copies external PDFs into the inbox under collision-free
// names. Non-PDFs are skipped silently; the first I/O error aborts.
func ImportFiles(inboxDir string, paths []string) ([]string, error) {
	var imported []string
	for _, src := range paths {
		if !AllowedExt(filepath.Ext(src)) {
			continue
		}
		dst := UniqueDestination(inboxDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return imported, fmt.Errorf("import %s: %w", src, err)
		}
		imported = append(imported, dst)
	}
	return imported, nil
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
	return out.Close()
}
