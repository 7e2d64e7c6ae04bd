package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyjs/internal/driver"
	"pyjs/internal/mono"
	"pyjs/internal/project"
)

var monoCmd = &cobra.Command{
	Use:   "mono <unit.yaml|dir>...",
	Short: "Specialize generic classes and dump the result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMono,
}

func init() {
	monoCmd.Flags().Bool("headers", false, "print only the specialization table")
	monoCmd.Flags().Int("max-depth", 64, "maximum nesting of instantiations")
	monoCmd.Flags().Int("jobs", 0, "parallel units (0 = GOMAXPROCS)")
}

func runMono(cmd *cobra.Command, args []string) error {
	headers, err := cmd.Flags().GetBool("headers")
	if err != nil {
		return err
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	files, err := project.ExpandArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no unit files found")
	}

	fs, units, err := driver.Compile(cmd.Context(), files, driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics(cmd),
		Emit:           driver.EmitNone,
		Mono:           mono.Options{MaxDepth: maxDepth},
		Timings:        timingDiagnostics(cmd),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := false
	for i := range units {
		u := &units[i]
		if err := printDiagnostics(cmd, cmd.ErrOrStderr(), u.Bag, fs); err != nil {
			return err
		}
		if u.Failed() {
			failed = true
			continue
		}
		if len(units) > 1 {
			fmt.Fprintf(out, "== %s ==\n", u.Path)
		}
		if err := mono.DumpMonoModule(out, u.Mono, mono.DumpOptions{HeadersOnly: headers}); err != nil {
			return err
		}
	}
	printTimings(cmd, cmd.ErrOrStderr(), units)
	if failed {
		return errReported
	}
	return nil
}
