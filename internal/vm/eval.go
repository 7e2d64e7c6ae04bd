package vm

import (
	"pyjs/internal/ir"
	"pyjs/internal/source"
)

// control tells enclosing statements how a statement finished.
type control uint8

const (
	ctlNext control = iota
	ctlReturn
	ctlBreak
	ctlContinue
)

func (vm *VM) execBlock(stmts []*ir.Stmt) (control, Value, error) {
	for _, s := range stmts {
		ctl, v, err := vm.exec(s)
		if err != nil || ctl != ctlNext {
			return ctl, v, err
		}
	}
	return ctlNext, None, nil
}

func (vm *VM) exec(s *ir.Stmt) (control, Value, error) {
	switch d := s.Data.(type) {
	case ir.LetData:
		v, err := vm.eval(d.Value)
		if err != nil {
			return ctlNext, None, err
		}
		vm.frame().env.define(d.Name, v)
	case ir.ExprStmtData:
		_, err := vm.eval(d.Expr)
		return ctlNext, None, err
	case ir.AssignData:
		return ctlNext, None, vm.assign(d, s.Span)
	case ir.ReturnData:
		if d.Value == nil {
			return ctlReturn, None, nil
		}
		v, err := vm.eval(d.Value)
		return ctlReturn, v, err
	case ir.IfData:
		cond, err := vm.eval(d.Cond)
		if err != nil {
			return ctlNext, None, err
		}
		if truthy(cond) {
			return vm.execBlock(d.Then)
		}
		return vm.execBlock(d.Else)
	case ir.WhileData:
		for {
			if err := vm.checkCanceled(s.Span); err != nil {
				return ctlNext, None, err
			}
			cond, err := vm.eval(d.Cond)
			if err != nil {
				return ctlNext, None, err
			}
			if !truthy(cond) {
				return ctlNext, None, nil
			}
			ctl, v, err := vm.execBlock(d.Body)
			if err != nil || ctl == ctlReturn {
				return ctl, v, err
			}
			if ctl == ctlBreak {
				return ctlNext, None, nil
			}
		}
	case ir.ForData:
		return vm.execFor(d, s.Span)
	case ir.BreakData:
		return ctlBreak, None, nil
	case ir.ContinueData:
		return ctlContinue, None, nil
	default:
		return ctlNext, None, vm.fail(s.Span, PanicUnimplemented, "unsupported statement %s", s.Kind)
	}
	return ctlNext, None, nil
}

func (vm *VM) execFor(d ir.ForData, span source.Span) (control, Value, error) {
	iter, err := vm.eval(d.Iter)
	if err != nil {
		return ctlNext, None, err
	}
	items, err := vm.iterate(iter, span)
	if err != nil {
		return ctlNext, None, err
	}
	env := vm.frame().env
	for _, item := range items {
		if err := vm.checkCanceled(span); err != nil {
			return ctlNext, None, err
		}
		if d.Var2 != "" {
			if item.Kind != VKList || len(item.List.Items) != 2 {
				return ctlNext, None, vm.fail(span, PanicTypeMismatch, "cannot unpack %s into two names", item.Kind)
			}
			env.assign(d.Var, item.List.Items[0])
			env.assign(d.Var2, item.List.Items[1])
		} else {
			env.assign(d.Var, item)
		}
		ctl, v, err := vm.execBlock(d.Body)
		if err != nil || ctl == ctlReturn {
			return ctl, v, err
		}
		if ctl == ctlBreak {
			break
		}
	}
	return ctlNext, None, nil
}

// iterate snapshots the elements a for loop visits.
func (vm *VM) iterate(v Value, span source.Span) ([]Value, error) {
	switch v.Kind {
	case VKList:
		return append([]Value(nil), v.List.Items...), nil
	case VKDict:
		return v.Dict.Keys(), nil
	case VKStr:
		out := make([]Value, 0, len(v.Str))
		for _, r := range v.Str {
			out = append(out, StrValue(string(r)))
		}
		return out, nil
	}
	return nil, vm.fail(span, PanicTypeMismatch, "%s object is not iterable", v.Kind)
}

func (vm *VM) assign(d ir.AssignData, span source.Span) error {
	value, err := vm.eval(d.Value)
	if err != nil {
		return err
	}
	if d.Op != "" {
		cur, err := vm.eval(d.Target)
		if err != nil {
			return err
		}
		if value, err = vm.binary(d.Op, cur, value, span); err != nil {
			return err
		}
	}
	switch t := d.Target.Data.(type) {
	case ir.NameData:
		vm.storeName(t.Name, value)
		return nil
	case ir.FieldData:
		obj, err := vm.eval(t.Object)
		if err != nil {
			return err
		}
		switch obj.Kind {
		case VKObject:
			obj.Obj.Fields[t.Name] = value
			return nil
		case VKClass:
			obj.Class.Statics[t.Name] = value
			return nil
		}
		return vm.fail(span, PanicTypeMismatch, "cannot set attribute %s on %s", t.Name, obj.Kind)
	case ir.IndexData:
		obj, err := vm.eval(t.Object)
		if err != nil {
			return err
		}
		idx, err := vm.eval(t.Index)
		if err != nil {
			return err
		}
		return vm.setIndex(obj, idx, value, span)
	}
	return vm.fail(span, PanicUnimplemented, "cannot assign to %s", d.Target.Kind)
}

// storeName writes a local unless the frame is the module itself.
func (vm *VM) storeName(name string, v Value) {
	f := vm.frame()
	if f.Func == nil {
		if _, ok := vm.Globals[name]; ok {
			vm.Globals[name] = v
			return
		}
	}
	f.env.assign(name, v)
}

func (vm *VM) checkCanceled(span source.Span) error {
	if err := vm.ctx.Err(); err != nil {
		return vm.fail(span, PanicCanceled, "%v", err)
	}
	return nil
}
