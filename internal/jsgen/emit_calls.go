package jsgen

import (
	"fmt"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/types"
)

var dictViews = map[string]string{
	"keys":   "keys",
	"values": "values",
	"items":  "entries",
}

var strMethods = map[string]string{
	"upper":      "toUpperCase",
	"lower":      "toLowerCase",
	"strip":      "trim",
	"startswith": "startsWith",
	"endswith":   "endsWith",
	"split":      "split",
}

func (fe *funcEmitter) call(d ir.CallData) (string, error) {
	switch callee := d.Callee.Data.(type) {
	case ir.NameData:
		if !fe.declared[callee.Name] && fe.emitter.mod.Func(callee.Name) == nil {
			if out, ok, err := fe.builtin(callee.Name, d.Args); ok || err != nil {
				return out, err
			}
		}
	case ir.FieldData:
		if out, ok, err := fe.methodCall(callee, d.Args); ok || err != nil {
			return out, err
		}
	}
	fn, err := fe.expr(d.Callee)
	if err != nil {
		return "", err
	}
	args, err := fe.exprs(d.Args)
	if err != nil {
		return "", err
	}
	return fn + "(" + strings.Join(args, ", ") + ")", nil
}

func (fe *funcEmitter) builtin(name string, argExprs []*ir.Expr) (string, bool, error) {
	if name == "print" {
		args, err := fe.printArgs(argExprs)
		return "console.log(" + strings.Join(args, ", ") + ")", true, err
	}
	args, err := fe.exprs(argExprs)
	if err != nil {
		return "", true, err
	}
	one := func() (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s() takes exactly one argument (%d given)", name, len(args))
		}
		return args[0], nil
	}
	switch name {
	case "len":
		arg, err := one()
		if err != nil {
			return "", true, err
		}
		if fe.emitter.kindOf(argExprs[0].Type) == types.KindDict {
			return arg + ".size", true, nil
		}
		return arg + ".length", true, nil
	case "str":
		arg, err := one()
		return "String(" + arg + ")", true, err
	case "int":
		arg, err := one()
		return "Math.trunc(Number(" + arg + "))", true, err
	case "float":
		arg, err := one()
		return "Number(" + arg + ")", true, err
	case "bool":
		arg, err := one()
		return "Boolean(" + arg + ")", true, err
	case "abs":
		arg, err := one()
		return "Math.abs(" + arg + ")", true, err
	case "min", "max":
		if len(args) == 1 {
			return "Math." + name + "(..." + args[0] + ")", true, nil
		}
		return "Math." + name + "(" + strings.Join(args, ", ") + ")", true, nil
	case "range":
		switch len(args) {
		case 1:
			return "Array.from({length: " + args[0] + "}, (_, i) => i)", true, nil
		case 2:
			return "Array.from({length: " + args[1] + " - " + args[0] + "}, (_, i) => " + args[0] + " + i)", true, nil
		}
		return "", true, fmt.Errorf("range with a step is only supported as a loop subject")
	}
	return "", false, nil
}

// printArgs spreads dict views into console.log the way they print as
// separate values.
func (fe *funcEmitter) printArgs(argExprs []*ir.Expr) ([]string, error) {
	out := make([]string, 0, len(argExprs))
	for _, a := range argExprs {
		if view, ok := fe.dictView(a); ok {
			obj, err := fe.expr(view.obj)
			if err != nil {
				return nil, err
			}
			out = append(out, "..."+obj+"."+view.method+"()")
			continue
		}
		v, err := fe.expr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type viewCall struct {
	obj    *ir.Expr
	method string
}

func (fe *funcEmitter) dictView(e *ir.Expr) (viewCall, bool) {
	call, ok := e.Data.(ir.CallData)
	if !ok || len(call.Args) != 0 {
		return viewCall{}, false
	}
	f, ok := call.Callee.Data.(ir.FieldData)
	if !ok || fe.emitter.kindOf(f.Object.Type) != types.KindDict {
		return viewCall{}, false
	}
	m, ok := dictViews[f.Name]
	return viewCall{obj: f.Object, method: m}, ok
}

func (fe *funcEmitter) methodCall(f ir.FieldData, argExprs []*ir.Expr) (string, bool, error) {
	if f.Object.Kind == ir.ExprSuper && f.Name == "__init__" {
		args, err := fe.exprs(argExprs)
		return "super(" + strings.Join(args, ", ") + ")", true, err
	}
	switch fe.emitter.kindOf(f.Object.Type) {
	case types.KindList:
		return fe.listMethod(f, argExprs)
	case types.KindDict:
		return fe.dictMethod(f, argExprs)
	case kindStr:
		return fe.strMethod(f, argExprs)
	}
	// Unbound instance method through the class: Base.action(obj).
	if c, isClass := fe.receiverClass(f.Object); c != nil && isClass && len(argExprs) > 0 {
		if m, ok := fe.emitter.member(c, f.Name); ok && m.method != nil && m.method.Kind == ir.FuncMethod {
			args, err := fe.exprs(argExprs)
			if err != nil {
				return "", true, err
			}
			return c.Name + ".prototype." + f.Name + ".call(" + strings.Join(args, ", ") + ")", true, nil
		}
	}
	return "", false, nil
}

func (fe *funcEmitter) listMethod(f ir.FieldData, argExprs []*ir.Expr) (string, bool, error) {
	obj, err := fe.expr(f.Object)
	if err != nil {
		return "", true, err
	}
	args, err := fe.exprs(argExprs)
	if err != nil {
		return "", true, err
	}
	joined := strings.Join(args, ", ")
	switch f.Name {
	case "append":
		return obj + ".push(" + joined + ")", true, nil
	case "extend":
		return obj + ".push(..." + joined + ")", true, nil
	case "pop":
		if len(args) == 0 {
			return obj + ".pop()", true, nil
		}
		return obj + ".splice(" + args[0] + ", 1)[0]", true, nil
	case "insert":
		if len(args) != 2 {
			return "", true, fmt.Errorf("insert expects 2 arguments, got %d", len(args))
		}
		return obj + ".splice(" + args[0] + ", 0, " + args[1] + ")", true, nil
	case "index":
		return obj + ".indexOf(" + joined + ")", true, nil
	case "copy":
		return "[..." + obj + "]", true, nil
	}
	return "", true, fmt.Errorf("unsupported list method %s", f.Name)
}

func (fe *funcEmitter) dictMethod(f ir.FieldData, argExprs []*ir.Expr) (string, bool, error) {
	obj, err := fe.expr(f.Object)
	if err != nil {
		return "", true, err
	}
	args, err := fe.exprs(argExprs)
	if err != nil {
		return "", true, err
	}
	if view, ok := dictViews[f.Name]; ok && len(args) == 0 {
		return "[..." + obj + "." + view + "()]", true, nil
	}
	switch f.Name {
	case "get":
		switch len(args) {
		case 1:
			return obj + ".get(" + args[0] + ")", true, nil
		case 2:
			return "(" + obj + ".has(" + args[0] + ") ? " + obj + ".get(" + args[0] + ") : " + args[1] + ")", true, nil
		}
	case "pop":
		if len(args) == 1 {
			return "((v) => (" + obj + ".delete(" + args[0] + "), v))(" + obj + ".get(" + args[0] + "))", true, nil
		}
	case "copy":
		return "new Map(" + obj + ")", true, nil
	}
	return "", true, fmt.Errorf("unsupported dict method %s with %d arguments", f.Name, len(args))
}

func (fe *funcEmitter) strMethod(f ir.FieldData, argExprs []*ir.Expr) (string, bool, error) {
	obj, err := fe.expr(f.Object)
	if err != nil {
		return "", true, err
	}
	args, err := fe.exprs(argExprs)
	if err != nil {
		return "", true, err
	}
	if f.Name == "join" && len(args) == 1 {
		return args[0] + ".join(" + obj + ")", true, nil
	}
	if js, ok := strMethods[f.Name]; ok {
		return obj + "." + js + "(" + strings.Join(args, ", ") + ")", true, nil
	}
	return "", true, fmt.Errorf("unsupported str method %s", f.Name)
}
