package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pyjs/internal/driver"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) last(file string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out Event
	for _, ev := range s.events {
		if ev.File == file {
			out = ev
		}
	}
	return out
}

func TestBuildWritesOutputs(t *testing.T) {
	outDir := t.TempDir()
	unit := filepath.Join("..", "..", "testdata", "units", "generics.yaml")
	sink := &recordingSink{}
	req := &BuildRequest{
		Files:    []string{unit},
		Driver:   driver.Options{Emit: driver.EmitJS, MaxDiagnostics: 8},
		OutPath:  func(string) string { return filepath.Join(outDir, "generics.js") },
		Progress: sink,
	}
	res, err := Build(context.Background(), req)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Written) != 1 {
		t.Fatalf("want one written file, got %v", res.Written)
	}
	data, err := os.ReadFile(res.Written[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "new Counter__list__int([1, 2])") {
		t.Fatalf("unexpected output:\n%s", data)
	}
	if ev := sink.last(unit); ev.Stage != StageWrite || ev.Status != StatusDone {
		t.Fatalf("unexpected final event %+v", ev)
	}
	sawMono := false
	for _, ev := range sink.events {
		if ev.Stage == StageMono && ev.Status == StatusWorking {
			sawMono = true
		}
	}
	if !sawMono {
		t.Fatalf("no mono progress event in %+v", sink.events)
	}
}

func TestBuildReportsFailedUnits(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("module: bad\nfuncs:\n  - name: main\n    body:\n      - bogus: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	sink := &recordingSink{}
	_, err := Build(context.Background(), &BuildRequest{
		Files:    []string{bad},
		Driver:   driver.Options{Emit: driver.EmitPy, MaxDiagnostics: 8},
		OutPath:  func(string) string { return filepath.Join(dir, "bad.py") },
		Progress: sink,
	})
	if !errors.Is(err, ErrUnitsFailed) {
		t.Fatalf("want ErrUnitsFailed, got %v", err)
	}
	if ev := sink.last(bad); ev.Status != StatusError {
		t.Fatalf("unexpected final event %+v", ev)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.py")); !os.IsNotExist(err) {
		t.Fatalf("failed units must not be written")
	}
}
