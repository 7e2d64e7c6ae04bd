package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pyjs/internal/driver"
	"pyjs/internal/mono"
	"pyjs/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <unit.yaml>",
	Short: "Specialize a unit and execute its main function",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnit,
}

func init() {
	runCmd.Flags().Int("max-depth", 64, "maximum nesting of instantiations")
	runCmd.Flags().Int("max-call-depth", 0, "call depth limit of the evaluator (0 = default)")
}

func runUnit(cmd *cobra.Command, args []string) error {
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return err
	}
	callDepth, err := cmd.Flags().GetInt("max-call-depth")
	if err != nil {
		return err
	}

	fs, bag, err := driver.RunUnit(cmd.Context(), args[0], driver.RunOptions{
		Stdout:         cmd.OutOrStdout(),
		MaxDiagnostics: maxDiagnostics(cmd),
		Mono:           mono.Options{MaxDepth: maxDepth},
		MaxCallDepth:   callDepth,
	})
	if perr := printDiagnostics(cmd, cmd.ErrOrStderr(), bag, fs); perr != nil {
		return perr
	}
	var vmErr *vm.VMError
	if errors.As(err, &vmErr) {
		fmt.Fprint(cmd.ErrOrStderr(), vmErr.FormatWithFiles(fs))
		return errReported
	}
	if err != nil {
		return err
	}
	if bag.HasErrors() {
		return errReported
	}
	return nil
}
