package source

import "testing"

func TestResolveRoundTripsOffset(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("unit.yaml", []byte("module: demo\nclasses:\n  - name: Counter\n"))

	tests := []struct {
		pos  LineCol
		want uint32
	}{
		{LineCol{Line: 1, Col: 1}, 0},
		{LineCol{Line: 2, Col: 1}, 13},
		{LineCol{Line: 3, Col: 5}, 26},
	}
	for _, tt := range tests {
		off := fs.Offset(id, tt.pos)
		if off != tt.want {
			t.Fatalf("Offset(%v) = %d, want %d", tt.pos, off, tt.want)
		}
		start, _ := fs.Resolve(Span{File: id, Start: off, End: off})
		if start != tt.pos {
			t.Fatalf("Resolve(%d) = %v, want %v", off, start, tt.pos)
		}
	}
}

func TestLoadNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("crlf.yaml", []byte("a\nb"), 0)
	if got := fs.Get(id).GetLine(2); got != "b" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	out, changed := normalizeCRLF([]byte("x\r\ny\r"))
	if !changed || string(out) != "x\ny\r" {
		t.Fatalf("normalizeCRLF = %q, %v", out, changed)
	}
}

func TestSpanAtClampsToContent(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("short", []byte("abc"))
	sp := fs.SpanAt(id, LineCol{Line: 1, Col: 2}, 10)
	if sp.Start != 1 || sp.End != 3 {
		t.Fatalf("unexpected span %v", sp)
	}
}
