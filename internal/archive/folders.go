package archive

import (
	"fmt"
	"os"
	"strings"
)

// ListCorrespondentFolders reads the archive root's first-level directory
// names. The listing is the resolver's ground truth: folders that really
// exist on disk outrank possibly-stale catalog entries.
func ListCorrespondentFolders(archiveRoot string) ([]string, error) {
	entries, err := os.ReadDir(archiveRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list archive root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
