package mono

import (
	"fmt"
	"io"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/types"
)

// DumpOptions configures DumpMonoModule.
type DumpOptions struct {
	// HeadersOnly prints the entry table without class bodies.
	HeadersOnly bool
}

// DumpMonoModule writes the entry table followed by the py-style module.
//
//	Counter__list__int = Counter[list[int]] (2 sites)
func DumpMonoModule(w io.Writer, mm *MonoModule, opts DumpOptions) error {
	if w == nil || mm == nil || mm.Module == nil {
		return nil
	}
	in := mm.Module.Types
	var b strings.Builder
	for _, s := range mm.Specialized {
		label := types.Label(in, s.Type(in))
		fmt.Fprintf(&b, "%s = %s (%d %s)", s.Name, label, len(s.UseSites), plural(len(s.UseSites), "site", "sites"))
		if s.Parent != nil {
			fmt.Fprintf(&b, " via %s", s.Parent.Name)
		}
		b.WriteByte('\n')
	}
	if !opts.HeadersOnly {
		if len(mm.Specialized) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ir.FormatModule(mm.Module))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
