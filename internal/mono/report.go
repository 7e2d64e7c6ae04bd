package mono

import (
	"errors"

	"pyjs/internal/diag"
	"pyjs/internal/source"
)

// Report converts a monomorphization error into a diagnostic. It returns
// false for errors that did not come from this package.
func Report(rep diag.Reporter, err error) bool {
	if rep == nil || err == nil {
		return false
	}
	var (
		unbound   *UnboundTypeParameterError
		collision *MangledNameCollisionError
		recursive *RecursiveInstantiationError
		unknown   *UnknownTemplateError
		arity     *ArityMismatchError
		leak      *TypeParamLeakError
	)
	switch {
	case errors.As(err, &unbound):
		diag.ReportError(rep, diag.MonoUnboundTypeParameter, unbound.Site, unbound.Error()).Emit()
	case errors.As(err, &collision):
		diag.ReportError(rep, diag.MonoNameCollision, collision.Site, collision.Error()).Emit()
	case errors.As(err, &recursive):
		b := diag.ReportError(rep, diag.MonoRecursiveInstantiation, recursive.Site, recursive.Error())
		if len(recursive.Chain) > 0 {
			b.WithNote(source.NoSpan, "instantiation chain starts at "+recursive.Chain[0].String())
		}
		b.Emit()
	case errors.As(err, &unknown):
		diag.ReportError(rep, diag.MonoUnknownTemplate, unknown.Site, unknown.Error()).Emit()
	case errors.As(err, &arity):
		diag.ReportError(rep, diag.MonoArityMismatch, arity.Site, arity.Error()).Emit()
	case errors.As(err, &leak):
		diag.ReportError(rep, diag.MonoTypeParamLeak, leak.Site, leak.Error()).Emit()
	default:
		return false
	}
	return true
}
