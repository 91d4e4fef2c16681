package render

import (
	"path/filepath"
	"strings"

	"github.com/dkoosis/ruledoc/pkg/catalog"
)

// RelPath strips rootPrefix from the category path and appends the host path
// separator and targetFileName. A category outside rootPrefix keeps its full
// path; callers filter those out beforehand.
func RelPath(category *catalog.Category, rootPrefix, targetFileName string) string {
	return strings.TrimPrefix(category.Path, rootPrefix) + string(filepath.Separator) + targetFileName
}

// Resolve returns the destination of a category page under baseDir. It does
// not touch the filesystem.
func Resolve(category *catalog.Category, rootPrefix, baseDir, targetFileName string) string {
	return filepath.Join(baseDir, RelPath(category, rootPrefix, targetFileName))
}

// within reports whether path lies inside dir once both are cleaned.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
