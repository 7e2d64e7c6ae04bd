package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func unitPath(name string) string {
	return filepath.Join("..", "..", "testdata", "units", name)
}

func executeCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err = rootCmd.Execute()
	runCleanups()
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	stdout, stderr, err := executeCLI(t, "run", unitPath("generics.yaml"))
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	if stdout != "5\n5\n4\n0\n" {
		t.Fatalf("unexpected output %q", stdout)
	}
}

func TestMonoCommandHeaders(t *testing.T) {
	stdout, stderr, err := executeCLI(t, "mono", "--headers", unitPath("generics.yaml"))
	if err != nil {
		t.Fatalf("mono: %v\n%s", err, stderr)
	}
	for _, want := range []string{"Counter__list__int = Counter[list[int]]", "Counter__dict__str_strUint = Counter[dict[str, str | int]]"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "class ") {
		t.Fatalf("headers mode printed class bodies:\n%s", stdout)
	}
}

func TestMonoCommandReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	content := `module: bad
classes:
  - name: Box
    type_params: [T]
    fields:
      - {name: item, type: T}
funcs:
  - name: main
    body:
      - let: b
        type: "Box[int, str]"
        value: {new: Box, type_args: [int, str], args: [{int: 1}]}
`
	if err := os.WriteFile(bad, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := executeCLI(t, "--diag-format", "short", "mono", "--headers=false", bad)
	if err == nil || !errorAlreadyReported(err) {
		t.Fatalf("expected reported error, got %v", err)
	}
	if !strings.Contains(stderr, "error MONO") {
		t.Fatalf("expected MONO diagnostic, got:\n%s", stderr)
	}
}

func TestBuildCommandToStdout(t *testing.T) {
	stdout, stderr, err := executeCLI(t, "--diag-format", "pretty", "build", "--stdout", "--emit", "js", "--no-cache", "--ui", "off", unitPath("generics.yaml"))
	if err != nil {
		t.Fatalf("build: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "class Counter__list__int {") {
		t.Fatalf("missing specialized class in:\n%s", stdout)
	}
}

func TestBuildCommandWritesManifestOutputs(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(unitPath("generics.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "generics.yaml"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	manifest := "[package]\nname = \"demo\"\n\n[build]\nemit = \"py\"\ncache = false\n"
	if err := os.WriteFile(filepath.Join(dir, "pyjs.toml"), []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	_, stderr, err := executeCLI(t, "--quiet", "build", "--stdout=false", "--emit", "", "--ui", "off")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, stderr)
	}
	out, err := os.ReadFile(filepath.Join(dir, "out", "src", "generics.py"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(out), "Counter__dict__str_strUint") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if payload.Tool != "pyjs" || payload.GitCommit == "" || payload.BuildDate == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	// reset for other tests sharing the command
	versionFormat, versionShowFull = "pretty", false
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
	if shouldUseTUI(uiModeOn, true) {
		t.Fatalf("quiet must disable the progress view")
	}
}

func TestRunWritesTraceFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "run.ndjson")
	t.Cleanup(func() {
		flags := rootCmd.PersistentFlags()
		_ = flags.Set("trace", "")
		_ = flags.Set("trace-level", "off")
	})
	_, stderr, err := executeCLI(t, "--trace", tracePath, "--trace-level", "phase", "run", unitPath("generics.yaml"))
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	for _, want := range []string{`"name":"run"`, `"name":"eval"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("trace is missing %s:\n%s", want, data)
		}
	}
}
