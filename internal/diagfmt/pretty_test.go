package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/work")
	id := fs.Add("/work/unit.yaml", []byte("classes:\n  - name: Counter\n"), 0)
	bag := diag.NewBag(8)
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.MonoUnboundTypeParameter,
		source.Span{File: id, Start: 19, End: 26}, "Counter: type parameter T is not bound").
		WithNote(source.Span{File: id, Start: 0, End: 7}, "template declared here").
		Emit()
	return bag, fs
}

func TestPrettyPlain(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative, ShowNotes: true})
	out := buf.String()

	if !strings.Contains(out, "unit.yaml:2:11: error MONO5001: Counter: type parameter T is not bound") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "^~~~~~~") {
		t.Fatalf("missing caret underline:\n%s", out)
	}
	if !strings.Contains(out, "note: template declared here") {
		t.Fatalf("missing note:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes without Color:\n%s", out)
	}
}

func TestJSONIncludesPositions(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "MONO5001" {
		t.Fatalf("unexpected output: %+v", out)
	}
	loc := out.Diagnostics[0].Location
	if loc.File != "unit.yaml" || loc.StartLine != 2 || loc.StartCol != 11 {
		t.Fatalf("unexpected location: %+v", loc)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes must be omitted unless requested")
	}
}
