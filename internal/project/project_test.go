package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifestFromSubdir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "demo"

[build]
units = ["units/**/*.yaml"]
emit = "py"
jobs = 2

[mono]
max_depth = 16
`)
	sub := filepath.Join(root, "units", "nested")
	writeFile(t, filepath.Join(sub, "b.yaml"), "module: b\n")
	writeFile(t, filepath.Join(root, "units", "a.yaml"), "module: a\n")
	writeFile(t, filepath.Join(root, "units", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "out", "units", "stale.yaml"), "")

	m, ok, err := LoadManifest(sub)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root: want %s, got %s", root, m.Root)
	}
	cfg := m.Config
	if cfg.Package.Name != "demo" || cfg.Build.Emit != EmitPy || cfg.Build.Jobs != 2 || cfg.Mono.MaxDepth != 16 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Build.OutDir != "out" || !cfg.Build.Cache {
		t.Fatalf("defaults were not applied: %+v", cfg.Build)
	}

	units, err := m.ResolveUnits()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{filepath.Join(root, "units", "a.yaml"), filepath.Join(sub, "b.yaml")}
	if !reflect.DeepEqual(units, want) {
		t.Fatalf("units: want %v, got %v", want, units)
	}
	if got := m.OutPath(want[1]); got != filepath.Join(root, "out", "units", "nested", "b.py") {
		t.Fatalf("out path: %s", got)
	}
	abs := filepath.Join(t.TempDir(), "dist")
	m.Config.Build.OutDir = abs
	if got := m.OutPath(want[0]); got != filepath.Join(abs, "units", "a.py") {
		t.Fatalf("absolute out path: %s", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "no package", content: "[build]\nemit = \"js\"\n", want: ErrPackageSectionMissing},
		{name: "blank name", content: "[package]\nname = \" \"\n", want: ErrPackageNameMissing},
		{name: "bad emit", content: "[package]\nname = \"x\"\n[build]\nemit = \"wasm\"\n"},
		{name: "unknown key", content: "[package]\nname = \"x\"\nversion = 2\n"},
		{name: "bad depth", content: "[package]\nname = \"x\"\n[mono]\nmax_depth = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"**/*.yaml", "a.yaml", true},
		{"**/*.yaml", "x/y/a.yaml", true},
		{"units/*.yaml", "units/a.yaml", true},
		{"units/*.yaml", "units/x/a.yaml", false},
		{"units/**", "units/x/a.yaml", true},
		{"*.yaml", "a.yml", false},
	}
	for _, tc := range cases {
		if got := MatchGlob(tc.pattern, tc.name); got != tc.want {
			t.Fatalf("MatchGlob(%q, %q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}

func TestCombineDependsOnParts(t *testing.T) {
	base := HashBytes([]byte("unit"))
	if Combine(base, []byte("js")) == Combine(base, []byte("py")) {
		t.Fatalf("different parts must produce different keys")
	}
	if Combine(base, []byte("js")) != Combine(base, []byte("js")) {
		t.Fatalf("Combine must be deterministic")
	}
	if !(Digest{}).IsZero() || base.IsZero() {
		t.Fatalf("IsZero is wrong")
	}
}
