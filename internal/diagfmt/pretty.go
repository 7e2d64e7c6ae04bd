package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"pyjs/internal/diag"
	"pyjs/internal/source"
)

type palette struct {
	err, warn, info, note, loc, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.loc, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders bag items (expected to be sorted) as
//
//	path:line:col: error MONO5001: message
//	   3 | source line
//	     |    ^~~~
//
// followed by notes in the same layout.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		header := fmt.Sprintf("%s %s", diag.SeverityLabel(d.Severity), d.Code.ID())
		writeEntry(w, fs, p, opts, d.Primary, p.severity(d.Severity).Sprint(header), d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			writeEntry(w, fs, p, opts, n.Span, p.note.Sprint("note"), n.Msg)
		}
	}
	if bag.Truncated() {
		fmt.Fprintf(w, "%s\n", p.warn.Sprintf("... more diagnostics omitted (limit %d)", bag.Cap()))
	}
}

func writeEntry(w io.Writer, fs *source.FileSet, p palette, opts PrettyOpts, sp source.Span, label, msg string) {
	if int(sp.File) >= fs.Len() {
		fmt.Fprintf(w, "%s: %s\n", label, msg)
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	fmt.Fprintf(w, "%s: %s: %s\n", p.loc.Sprintf("%s:%d:%d", displayPath(f, fs, opts.PathMode), start.Line, start.Col), label, msg)

	ctx := max(int(opts.Context), 0)
	first := max(int(start.Line)-ctx, 1)
	last := int(start.Line) + ctx
	width := len(fmt.Sprint(last))
	for line := first; line <= last; line++ {
		text := f.GetLine(uint32(line)) // #nosec G115 -- bounded by line count
		if line != int(start.Line) && text == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, line), text)
		if line != int(start.Line) {
			continue
		}
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		}
		marker := "^" + strings.Repeat("~", n-1)
		pad := strings.Repeat(" ", int(start.Col)-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad, p.caret.Sprint(marker))
	}
}

func displayPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeAbsolute, PathModeBasename, PathModeAuto:
		return f.FormatPath(mode.String(), fs.BaseDir())
	}
	return f.Path
}
