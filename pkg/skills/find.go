package skills

import (
	"os"
	"path/filepath"
)

// FindManifest looks for SKILL.md directly in dir, then in subdirectories
// down to maxDepth levels. Entries are visited in name order, symlinked
// subdirectories are not followed, and .git is skipped.
func FindManifest(dir string, maxDepth int) (string, bool) {
	direct := filepath.Join(dir, manifestFileName)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, true
	}
	if maxDepth <= 0 {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}
		if found, ok := FindManifest(filepath.Join(dir, entry.Name()), maxDepth-1); ok {
			return found, true
		}
	}
	return "", false
}
