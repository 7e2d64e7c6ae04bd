package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeInstance, false},
		{LevelDebug, ScopeInstance, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s/%s: want %v, got %v", tc.level, tc.scope, tc.want, got)
		}
	}
}

func TestBeginCtxParentsNestedSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, pass := BeginCtx(ctx, ScopePass, "mono")
	PointCtx(ctx, ScopeInstance, "Counter__list__int", "Counter[list[int]]", nil)
	pass.End("ok")

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Kind != KindPoint || events[1].ParentID != pass.ID() {
		t.Fatalf("point should be parented to the pass span: %+v", events[1])
	}
	if events[2].Kind != KindSpanEnd || events[2].Detail != "ok" {
		t.Fatalf("unexpected end event: %+v", events[2])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	Begin(tr, ScopeUnit, "unit:generics.yaml", 0).WithExtra("classes", "2").End("")
	Point(tr, ScopeInstance, "filtered", "", 0, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected begin+end lines, got %d:\n%s", len(lines), buf.String())
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if end.Kind != "end" || end.Scope != "unit" || end.Extra["classes"] != "2" {
		t.Fatalf("unexpected end event %+v", end)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeInstance, name, "", 0, nil)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", events)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected disabled nop tracer, got %v %v", tr, err)
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer should resolve to Nop")
	}
}
