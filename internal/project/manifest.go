// Package project reads the pyjs.toml manifest and resolves the unit files a
// build covers.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file searched for upward from the working directory.
const ManifestName = "pyjs.toml"

// Emit kinds accepted by [build].emit.
const (
	EmitPy = "py"
	EmitJS = "js"
)

// Manifest is a parsed pyjs.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Mono    MonoConfig    `toml:"mono"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	// Units are glob patterns relative to the manifest directory.
	Units  []string `toml:"units"`
	Emit   string   `toml:"emit"`
	OutDir string   `toml:"out_dir"`
	Jobs   int      `toml:"jobs"`
	Cache  bool     `toml:"cache"`
}

type MonoConfig struct {
	MaxDepth int `toml:"max_depth"`
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// DefaultConfig holds the values used for keys the manifest leaves out.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Units:  []string{"**/*.yaml"},
			Emit:   EmitJS,
			OutDir: "out",
			Cache:  true,
		},
		Mono: MonoConfig{MaxDepth: 64},
	}
}

// FindManifest walks up from startDir to locate pyjs.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the manifest above startDir. ok is false
// when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	switch cfg.Build.Emit {
	case EmitPy, EmitJS:
	default:
		return Config{}, fmt.Errorf("%s: [build].emit must be %q or %q, got %q", path, EmitPy, EmitJS, cfg.Build.Emit)
	}
	if cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if cfg.Mono.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("%s: [mono].max_depth must be positive", path)
	}
	return cfg, nil
}

// OutPath returns where the output for unit should be written.
func (m *Manifest) OutPath(unit string) string {
	rel, err := filepath.Rel(m.Root, unit)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(unit)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + m.Config.Build.Emit
	return filepath.Join(m.OutDir(), rel)
}

// OutDir resolves [build].out_dir against the manifest directory.
func (m *Manifest) OutDir() string {
	if filepath.IsAbs(m.Config.Build.OutDir) {
		return m.Config.Build.OutDir
	}
	return filepath.Join(m.Root, m.Config.Build.OutDir)
}
