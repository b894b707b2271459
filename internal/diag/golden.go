package diag

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FileScheme prefixes locations that point at a source file.
const FileScheme = "file://"

// FormatShortDiagnostics renders diagnostics one per line in arrival order:
//
//	<severity> <path>:<line>:<col> <message>
//
// File locations under baseDir are shown relative to it. Unknown positions are
// omitted, and a diagnostic with no location prints "-" as its path.
func FormatShortDiagnostics(diags []Diagnostic, baseDir string) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range diags {
		fmt.Fprintf(&b, "%s %s %s", severityLabel(d.Severity), Where(d, baseDir), SanitizeMessage(d.Message))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// DisplayPath converts a diagnostic location into something printable.
// file:// URLs become paths, relative to baseDir when possible.
func DisplayPath(location, baseDir string) string {
	if location == "" {
		return ""
	}
	path, ok := strings.CutPrefix(location, FileScheme)
	if !ok {
		return location
	}
	if baseDir != "" {
		if rel, err := filepath.Rel(filepath.ToSlash(baseDir), path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return normalizePath(path)
}

// Where renders "<path>:<line>:<col>" for d, dropping unknown parts. A
// diagnostic with no location yields "-".
func Where(d Diagnostic, baseDir string) string {
	path := DisplayPath(d.Location, baseDir)
	if path == "" {
		path = "-"
	}
	switch {
	case d.HasPosition():
		return fmt.Sprintf("%s:%d:%d", path, d.Line, d.Column)
	case d.Line != NoPosition:
		return fmt.Sprintf("%s:%d", path, d.Line)
	}
	return path
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

// SanitizeMessage folds a compiler message onto one line. Compilers on some
// platforms emit decomposed accents in paths and identifiers, so the text is
// NFC-normalized as well.
func SanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(norm.NFC.String(msg))
}
