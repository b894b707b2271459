// Package execpass runs an external compiler command as one compilation pass.
//
// The command is a groovyc-style compiler: it takes source files as trailing
// arguments, writes class files under an output directory and reports errors
// on stdout/stderr. After a successful run the pass enumerates the emitted
// class files and scans every staged source for its top-level declarations,
// which is all the attribution step needs.
package execpass

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"unitc/internal/attrib"
	"unitc/internal/buildpipeline"
	"unitc/internal/failure"
)

const (
	// OutPlaceholder expands to the pass output directory.
	OutPlaceholder = "{out}"
	// ClasspathPlaceholder expands to the pass classpath.
	ClasspathPlaceholder = "{classpath}"
)

// Config describes one external compiler pass.
type Config struct {
	// Command is the argv template; sources are appended after it.
	Command   []string
	OutputDir string
	Classpath []string
	// Dir is the working directory of the compiler process.
	Dir  string
	Env  []string
	Jobs int
}

// Pass implements buildpipeline.Pass over an external compiler process.
type Pass struct {
	cfg     Config
	sources []string

	classes  []string
	units    []attrib.SourceUnit
	warnings []string
	output   []byte
}

var _ buildpipeline.Pass = (*Pass)(nil)

// New returns a pass for cfg. The output directory is made absolute when
// possible.
func New(cfg Config) *Pass {
	if abs, err := filepath.Abs(cfg.OutputDir); err == nil && cfg.OutputDir != "" {
		cfg.OutputDir = abs
	}
	return &Pass{cfg: cfg}
}

// AddSource stages path for the next Compile.
func (p *Pass) AddSource(path string) buildpipeline.Source {
	p.sources = append(p.sources, path)
	return buildpipeline.Source{Path: path, ID: len(p.sources) - 1}
}

// Compile runs the compiler over every staged source.
func (p *Pass) Compile() error {
	p.classes, p.units, p.warnings, p.output = nil, nil, nil, nil

	if len(p.sources) == 0 {
		return nil
	}
	if len(p.cfg.Command) == 0 {
		return failure.Plain("no compiler command configured")
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return failure.IO(err)
	}

	args := p.Args()
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	cmd.Dir = p.cfg.Dir
	if len(p.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), p.cfg.Env...)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()
	p.output = out.Bytes()

	rep := parseOutput(p.output)
	p.warnings = rep.warnings

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return failure.IO(fmt.Errorf("run %s: %w", args[0], runErr))
		}
		if len(rep.causes) == 0 {
			return failure.Plain(fmt.Sprintf("%s exited with status %d", filepath.Base(args[0]), exitErr.ExitCode()))
		}
		return failure.Aggregate(rep.causes...)
	}
	if len(rep.causes) > 0 {
		return failure.Aggregate(rep.causes...)
	}

	classes, err := ListClasses(p.cfg.OutputDir)
	if err != nil {
		return failure.IO(err)
	}
	units, err := ScanSources(p.sources, p.cfg.Jobs)
	if err != nil {
		return failure.IO(err)
	}
	p.classes, p.units = classes, units
	return nil
}

// Args returns the expanded command line for the staged sources.
func (p *Pass) Args() []string {
	cp := strings.Join(p.cfg.Classpath, string(os.PathListSeparator))
	args := make([]string, 0, len(p.cfg.Command)+len(p.sources))
	for _, a := range p.cfg.Command {
		a = strings.ReplaceAll(a, OutPlaceholder, p.cfg.OutputDir)
		a = strings.ReplaceAll(a, ClasspathPlaceholder, cp)
		args = append(args, a)
	}
	return append(args, p.sources...)
}

func (p *Pass) CompiledClasses() []string { return p.classes }

func (p *Pass) SourceUnits() iter.Seq[attrib.SourceUnit] { return slices.Values(p.units) }

func (p *Pass) Warnings() []string { return p.warnings }

func (p *Pass) OutputDirectory() string { return p.cfg.OutputDir }

// Output returns what the compiler printed during the last Compile.
func (p *Pass) Output() []byte { return p.output }

// ListClasses returns the fully-qualified names of all class files under dir.
func ListClasses(dir string) ([]string, error) {
	var classes []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, attrib.ClassExt) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), attrib.ClassExt)
		classes = append(classes, strings.ReplaceAll(name, "/", "."))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate classes in %s: %w", dir, err)
	}
	return classes, nil
}

// ScanSources reads and scans every source in parallel. Results keep the
// order of paths.
func ScanSources(paths []string, jobs int) ([]attrib.SourceUnit, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index.
	units := make([]attrib.SourceUnit, len(paths))
	var g errgroup.Group
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			units[i] = attrib.SourceUnit{Path: path, TopLevel: ScanTopLevel(src, path)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}
