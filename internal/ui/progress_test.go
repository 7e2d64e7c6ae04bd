package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pyjs/internal/buildpipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan buildpipeline.Event)
	model := NewProgressModel("pyjs build", []string{"a.yaml", "b.yaml"}, events)

	var m tea.Model = model
	m, _ = m.Update(eventMsg(buildpipeline.Event{File: "a.yaml", Stage: buildpipeline.StageMono, Status: buildpipeline.StatusWorking}))
	m, _ = m.Update(eventMsg(buildpipeline.Event{File: "b.yaml", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusCached}))
	m, _ = m.Update(eventMsg(buildpipeline.Event{File: "unknown.yaml", Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusError}))

	m, _ = m.Update(eventMsg(buildpipeline.Event{File: "b.yaml", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone, Elapsed: 2500 * time.Microsecond}))

	view := m.View()
	for _, want := range []string{"pyjs build", "specializing", "cached", "a.yaml", "b.yaml", "2.5 ms", "0 built, 1 cached, 0 failed"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view is missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "unknown.yaml") {
		t.Fatalf("events for unknown files must be ignored:\n%s", view)
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatalf("done must quit the program")
	}
	if !strings.Contains(m.View(), "done: pyjs build") {
		t.Fatalf("unexpected final view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"averyveryverylongname.yaml", 10, "aver..."},
		{"abcdef", 3, "abc"},
		{"日本語のファイル", 8, "日..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
