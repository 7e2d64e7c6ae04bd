package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pyjs/internal/diag"
	"pyjs/internal/diagfmt"
	"pyjs/internal/driver"
	"pyjs/internal/source"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("errors reported")

func errorAlreadyReported(err error) bool {
	return errors.Is(err, errReported)
}

func maxDiagnostics(cmd *cobra.Command) int {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func quietFlag(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func timingsFlag(cmd *cobra.Command) bool {
	v, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && v
}

func diagFormat(cmd *cobra.Command) string {
	format, err := cmd.Root().PersistentFlags().GetString("diag-format")
	if err != nil {
		return "pretty"
	}
	return strings.ToLower(strings.TrimSpace(format))
}

// timingDiagnostics reports whether timings travel as OBS diagnostics. JSON
// output keeps them machine-readable; other formats print a table instead.
func timingDiagnostics(cmd *cobra.Command) bool {
	return timingsFlag(cmd) && diagFormat(cmd) == "json"
}

// printTimings writes the phase table of every unit when --timings is set.
func printTimings(cmd *cobra.Command, w io.Writer, units []driver.UnitResult) {
	if !timingsFlag(cmd) || timingDiagnostics(cmd) {
		return
	}
	for i := range units {
		u := &units[i]
		if u.Cached {
			fmt.Fprintf(w, "%s: cached\n", u.Path)
			continue
		}
		fmt.Fprint(w, u.Timing.Format(u.Path))
	}
}

// printDiagnostics writes bag to w in the format selected by --diag-format.
func printDiagnostics(cmd *cobra.Command, w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	format := diagFormat(cmd)
	bag.Sort()
	switch format {
	case "", "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   1,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: true,
		})
		return nil
	case "short":
		_, err := io.WriteString(w, diag.FormatShortDiagnostics(bag.Items(), fs, true))
		return err
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     true,
		})
	default:
		return fmt.Errorf("invalid --diag-format value %q (expected pretty|short|json)", format)
	}
}
