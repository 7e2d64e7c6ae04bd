package vm

import (
	"fmt"
	"strings"

	"pyjs/internal/source"
)

// PanicCode identifies the type of runtime failure.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch   PanicCode = 1003 // VM1003: operand or receiver of the wrong kind
	PanicOutOfBounds    PanicCode = 1004 // VM1004: list or string index out of range
	PanicUndefinedName  PanicCode = 1007 // VM1007: name not bound
	PanicUndefinedAttr  PanicCode = 1008 // VM1008: missing field, static or method
	PanicDivByZero      PanicCode = 1009 // VM1009: division or modulo by zero
	PanicKeyError       PanicCode = 1010 // VM1010: missing dict key
	PanicArity          PanicCode = 1011 // VM1011: wrong number of arguments
	PanicRecursionLimit PanicCode = 1012 // VM1012: call depth exceeded
	PanicCanceled       PanicCode = 1013 // VM1013: context canceled
	PanicUnimplemented  PanicCode = 1999 // VM1999: unsupported construct
)

// String returns the code as "VM1003".
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// VMError represents a runtime failure of the evaluated program.
type VMError struct {
	Code      PanicCode
	Message   string
	Span      source.Span
	Backtrace []BacktraceFrame // top to bottom
}

func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// FormatWithFiles formats the panic with resolved file:line:col information.
func (p *VMError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(p.Span, files))
	sb.WriteString("\n")
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, frame.FuncName, formatSpan(frame.Span, files))
		}
	}
	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>".
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || span == source.NoSpan || int(span.File) >= files.Len() {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

// fail builds a VMError at span with a backtrace of the current stack.
func (vm *VM) fail(span source.Span, code PanicCode, format string, args ...any) *VMError {
	e := &VMError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
	e.Backtrace = make([]BacktraceFrame, 0, len(vm.Stack))
	for i := len(vm.Stack) - 1; i >= 0; i-- {
		e.Backtrace = append(e.Backtrace, BacktraceFrame{FuncName: vm.Stack[i].Name, Span: vm.Stack[i].Span})
	}
	return e
}
