package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrCompilerCommandMissing indicates that [compiler].command is missing or empty.
	ErrCompilerCommandMissing = errors.New("missing [compiler].command")
	// ErrProductionSectionMissing indicates that [production] is missing.
	ErrProductionSectionMissing = errors.New("missing [production]")
)

// Defaults applied to sections the manifest leaves out.
var (
	DefaultExtensions = []string{".groovy"}
	DefaultTestOutput = filepath.Join("build", "classes", "test")
)

// Manifest is a loaded unitc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest layout.
type Config struct {
	Package    PackageConfig  `toml:"package"`
	Compiler   CompilerConfig `toml:"compiler"`
	Production PassConfig     `toml:"production"`
	Test       PassConfig     `toml:"test"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// CompilerConfig describes the external compiler shared by both passes.
type CompilerConfig struct {
	// Command may use {out} and {classpath}; sources are appended.
	Command    []string `toml:"command"`
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
}

// PassConfig describes the sources and output of one pass. Paths are
// relative to the project root unless absolute.
type PassConfig struct {
	Sources   []string `toml:"sources"`
	Output    string   `toml:"output"`
	Classpath []string `toml:"classpath"`
}

// Load finds unitc.toml from startDir upwards and parses it. It returns
// ErrNoManifest when there is none.
func Load(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// LoadConfig parses and validates the manifest at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(meta, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	applyDefaults(meta, &cfg)
	return cfg, nil
}

func validate(meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return ErrPackageSectionMissing
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return ErrPackageNameMissing
	}
	if !meta.IsDefined("compiler", "command") || len(cfg.Compiler.Command) == 0 || strings.TrimSpace(cfg.Compiler.Command[0]) == "" {
		return ErrCompilerCommandMissing
	}
	if cfg.Compiler.Jobs < 0 {
		return fmt.Errorf("[compiler].jobs must not be negative, got %d", cfg.Compiler.Jobs)
	}
	if !meta.IsDefined("production") {
		return ErrProductionSectionMissing
	}
	if len(cfg.Production.Sources) == 0 {
		return errors.New("missing [production].sources")
	}
	if strings.TrimSpace(cfg.Production.Output) == "" {
		return errors.New("missing [production].output")
	}
	if meta.IsDefined("test", "output") && strings.TrimSpace(cfg.Test.Output) == "" {
		return errors.New("[test].output must not be empty")
	}
	for _, ext := range cfg.Compiler.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[compiler].extensions: %q must start with a dot", ext)
		}
	}
	return nil
}

func applyDefaults(meta toml.MetaData, cfg *Config) {
	if !meta.IsDefined("compiler", "extensions") {
		cfg.Compiler.Extensions = slices.Clone(DefaultExtensions)
	}
	if strings.TrimSpace(cfg.Test.Output) == "" {
		cfg.Test.Output = DefaultTestOutput
	}
}

// Abs resolves a manifest-relative path against the project root.
func (m *Manifest) Abs(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.Root, path)
}

// Pass returns the configuration of the test pass when isTest is set,
// otherwise of the production pass.
func (m *Manifest) Pass(isTest bool) PassConfig {
	if isTest {
		return m.Config.Test
	}
	return m.Config.Production
}

// OutputDir returns the absolute output directory of a pass.
func (m *Manifest) OutputDir(isTest bool) string {
	return m.Abs(m.Pass(isTest).Output)
}

// Classpath returns the absolute classpath of a pass. The test pass compiles
// against the production output, so that directory comes first.
func (m *Manifest) Classpath(isTest bool) []string {
	var cp []string
	if isTest {
		cp = append(cp, m.OutputDir(false))
	}
	for _, entry := range m.Pass(isTest).Classpath {
		cp = append(cp, m.Abs(entry))
	}
	return cp
}
