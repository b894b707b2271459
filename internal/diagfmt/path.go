package diagfmt

import (
	"path/filepath"
	"strings"

	"unitc/internal/diag"
)

// formatPath renders a diagnostic location according to mode. Locations that
// are not file URLs are returned unchanged.
func formatPath(location string, mode PathMode, baseDir string) string {
	if !strings.HasPrefix(location, diag.FileScheme) {
		return location
	}
	switch mode {
	case PathModeAbsolute:
		return diag.DisplayPath(location, "")
	case PathModeBasename:
		return filepath.Base(diag.DisplayPath(location, ""))
	default:
		return diag.DisplayPath(location, baseDir)
	}
}
