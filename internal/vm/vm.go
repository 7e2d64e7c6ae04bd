// Package vm is a reference evaluator for monomorphized modules. It runs
// programs the way the generated JavaScript would, which lets tests check the
// behavior of specialized classes without a JS engine.
package vm

import (
	"context"
	"io"
	"os"

	"pyjs/internal/ir"
	"pyjs/internal/source"
)

// Config holds evaluator settings.
type Config struct {
	Stdout io.Writer
	Files  *source.FileSet
	// MaxCallDepth defaults to 1000.
	MaxCallDepth int
}

// VM evaluates one module.
type VM struct {
	M       *ir.Module
	Stack   []Frame
	Globals map[string]Value
	Classes map[string]*Class
	Files   *source.FileSet

	out          io.Writer
	maxCallDepth int
	ctx          context.Context
	started      bool
}

func New(m *ir.Module, cfg Config) *VM {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = 1000
	}
	vm := &VM{
		M:            m,
		Globals:      make(map[string]Value),
		Classes:      make(map[string]*Class, len(m.Classes)),
		Files:        cfg.Files,
		out:          cfg.Stdout,
		maxCallDepth: cfg.MaxCallDepth,
		ctx:          context.Background(),
	}
	for _, c := range m.Classes {
		vm.Classes[c.Name] = &Class{Decl: c, Statics: make(map[string]Value)}
	}
	for _, c := range vm.Classes {
		if c.Decl.Base != "" {
			c.Base = vm.Classes[c.Decl.Base]
		}
	}
	return vm
}

// Init evaluates module globals, then class statics in class order, once.
func (vm *VM) Init(ctx context.Context) error {
	if vm.started {
		return nil
	}
	vm.started = true
	vm.ctx = ctx
	vm.Stack = append(vm.Stack, Frame{Name: "<module>", env: newEnv(nil)})
	defer func() { vm.Stack = vm.Stack[:0] }()
	for _, g := range vm.M.Globals {
		v, err := vm.eval(g.Value)
		if err != nil {
			return err
		}
		vm.Globals[g.Name] = v
	}
	for _, decl := range vm.M.Classes {
		c := vm.Classes[decl.Name]
		for _, f := range decl.Statics {
			v, err := vm.eval(f.Value)
			if err != nil {
				return err
			}
			c.Statics[f.Name] = v
		}
	}
	return nil
}

// Run initializes the module and calls main.
func (vm *VM) Run(ctx context.Context) error {
	_, err := vm.Call(ctx, "main")
	return err
}

// Call invokes the module function name.
func (vm *VM) Call(ctx context.Context, name string, args ...Value) (Value, error) {
	if err := vm.Init(ctx); err != nil {
		return None, err
	}
	vm.ctx = ctx
	fn := vm.M.Func(name)
	if fn == nil {
		return None, vm.fail(source.NoSpan, PanicUndefinedName, "name %q is not defined", name)
	}
	return vm.callFunc(fn, nil, nil, args, fn.Span)
}

// New constructs an instance of the named class.
func (vm *VM) New(ctx context.Context, class string, args ...Value) (Value, error) {
	if err := vm.Init(ctx); err != nil {
		return None, err
	}
	vm.ctx = ctx
	c := vm.Classes[class]
	if c == nil {
		return None, vm.fail(source.NoSpan, PanicUndefinedName, "class %q is not defined", class)
	}
	return vm.instantiate(c, args, source.NoSpan)
}

// CallMethod calls a method on recv.
func (vm *VM) CallMethod(ctx context.Context, recv Value, name string, args ...Value) (Value, error) {
	if err := vm.Init(ctx); err != nil {
		return None, err
	}
	vm.ctx = ctx
	m, err := vm.attr(recv, name, source.NoSpan)
	if err != nil {
		return None, err
	}
	return vm.call(m, args, source.NoSpan)
}
