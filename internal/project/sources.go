package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the source files of one pass: every file under the pass
// source directories whose extension is listed in [compiler].extensions.
// Paths are absolute, deduplicated and sorted. Source directories that do not
// exist are skipped; a listed regular file is taken as-is.
//
// Test roots nested inside a production root belong to the test pass only:
// production discovery leaves them out, so no file is discovered for both.
func (m *Manifest) Discover(isTest bool) ([]string, error) {
	exts := m.Config.Compiler.Extensions
	var exclude []string
	if !isTest {
		for _, dir := range m.Config.Test.Sources {
			exclude = append(exclude, m.Abs(dir))
		}
	}
	var files []string
	for _, dir := range m.Pass(isTest).Sources {
		root := m.Abs(dir)
		if underAny(root, exclude) {
			continue
		}
		info, err := os.Stat(root)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat source root %q: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && (strings.HasPrefix(d.Name(), ".") || slices.Contains(exclude, path)) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, exts) && !slices.Contains(exclude, path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk source root %q: %w", root, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// underAny reports whether path is one of roots or lies below one of them.
func underAny(path string, roots []string) bool {
	for _, r := range roots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
