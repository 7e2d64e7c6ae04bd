package driver

import (
	"context"
	"fmt"
	"io"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/mono"
	"pyjs/internal/source"
	"pyjs/internal/trace"
	"pyjs/internal/types"
	"pyjs/internal/vm"
)

// RunOptions configures RunUnit.
type RunOptions struct {
	Stdout         io.Writer
	MaxDiagnostics int
	Mono           mono.Options
	MaxCallDepth   int
}

// RunUnit loads and monomorphizes one unit, then executes its main function
// on the reference evaluator. Compile problems are returned in the bag; a
// runtime failure is returned as a *vm.VMError.
func RunUnit(ctx context.Context, path string, opts RunOptions) (*source.FileSet, *diag.Bag, error) {
	fileSet := source.NewFileSet()
	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}

	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "run")
	span.WithExtra("unit", path)
	defer span.End("")

	id, err := fileSet.Load(path)
	if err != nil {
		diag.ReportError(rep, diag.IOLoadFileError, source.NoSpan, fmt.Sprintf("load %s: %v", path, err)).Emit()
		return fileSet, bag, nil
	}
	m, err := ir.LoadUnit(fileSet, id, types.NewInterner(), rep)
	if err != nil {
		return fileSet, bag, nil
	}
	mm, err := mono.MonomorphizeModule(ctx, m, opts.Mono)
	if err != nil {
		if !mono.Report(rep, err) {
			diag.ReportError(rep, diag.MonoInfo, source.NoSpan, err.Error()).Emit()
		}
		return fileSet, bag, nil
	}

	evalCtx, evalSpan := trace.BeginCtx(ctx, trace.ScopePass, "eval")
	machine := vm.New(mm.Module, vm.Config{Stdout: opts.Stdout, Files: fileSet, MaxCallDepth: opts.MaxCallDepth})
	err = machine.Run(evalCtx)
	if err != nil {
		evalSpan.End("panic")
		return fileSet, bag, err
	}
	evalSpan.End("")
	return fileSet, bag, nil
}
