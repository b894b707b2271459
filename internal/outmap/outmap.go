// Package outmap persists the source-to-class mapping produced by a build.
//
// The map is a msgpack document written next to the build output so that
// incremental tooling can find which class files belong to which source file
// without recompiling.
package outmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"unitc/internal/attrib"
)

// SchemaVersion is bumped whenever the Map layout changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Read for maps written by another version.
var ErrSchemaMismatch = errors.New("output map schema mismatch")

// Map is the persisted result of one CompileAll.
type Map struct {
	Schema  uint16
	Package string
	// Count guards against truncated item lists.
	Count uint32
	Items []attrib.OutputItem
}

// New builds a map for pkg from items.
func New(pkg string, items []attrib.OutputItem) (*Map, error) {
	n, err := safecast.Conv[uint32](len(items))
	if err != nil {
		return nil, fmt.Errorf("too many output items: %w", err)
	}
	return &Map{
		Schema:  SchemaVersion,
		Package: pkg,
		Count:   n,
		Items:   slices.Clone(items),
	}, nil
}

// Write encodes m to path, replacing any previous map atomically.
func (m *Map) Write(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".outmap-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("encode output map: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), path)
}

// Read decodes the map at path.
func Read(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Map
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: decode output map: %w", path, err)
	}
	if m.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, ErrSchemaMismatch, m.Schema, SchemaVersion)
	}
	n, err := safecast.Conv[int](m.Count)
	if err != nil || n != len(m.Items) {
		return nil, fmt.Errorf("%s: output map declares %d items, holds %d", path, m.Count, len(m.Items))
	}
	return &m, nil
}

// Sources returns the distinct source files in the map, in first-seen order.
func (m *Map) Sources() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, it := range m.Items {
		if _, ok := seen[it.SourceFile]; ok {
			continue
		}
		seen[it.SourceFile] = struct{}{}
		out = append(out, it.SourceFile)
	}
	return out
}

// Outputs returns the class files attributed to source.
func (m *Map) Outputs(source string) []string {
	var out []string
	for _, it := range m.Items {
		if it.SourceFile == source {
			out = append(out, it.OutputPath)
		}
	}
	return out
}
