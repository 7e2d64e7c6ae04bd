package jsgen

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/mono"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

func loadFile(t *testing.T, name string) *ir.Module {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(32)
	m, err := ir.LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", name), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load %s: %v\n%s", name, err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m
}

func loadString(t *testing.T, src string) *ir.Module {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.yaml", []byte(src))
	bag := diag.NewBag(32)
	m, err := ir.LoadUnit(fs, id, types.NewInterner(), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m
}

func emitMono(t *testing.T, m *ir.Module, opts Options) string {
	t.Helper()
	mm, err := mono.MonomorphizeModule(context.Background(), m, mono.Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	out, err := EmitModule(mm.Module, opts)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	return out
}

const genericsJS = `// tests.cases.generics
class Counter__list__int {
  constructor(items) {
    this.items = items;
  }

  add(num) {
    return (this.items.length + num);
  }

  multiply(num) {
    return (this.items.length * num);
  }

}


class Counter__dict__str_strUint {
  constructor(items) {
    this.items = items;
  }

  add(num) {
    return (this.items.size + num);
  }

  multiply(num) {
    return (this.items.size * num);
  }

}


function main() {
  var inferred_list = new Counter__list__int([1, 2]);
  console.log(inferred_list.add(3));
  var explicit_list = new Counter__list__int([]);
  console.log(explicit_list.add(5));
  var inferred_dict = new Counter__dict__str_strUint(new Map([['one', 'two'], ['three', 4]]));
  console.log(inferred_dict.multiply(2));
  var explicit_dict = new Counter__dict__str_strUint(new Map([]));
  console.log(explicit_dict.multiply(4));
}
`

func TestEmitGenerics(t *testing.T) {
	got := emitMono(t, loadFile(t, "generics.yaml"), Options{})
	if got != genericsJS {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, genericsJS)
	}
}

func TestEmitRunMain(t *testing.T) {
	got := emitMono(t, loadFile(t, "generics.yaml"), Options{RunMain: true})
	if !strings.HasSuffix(got, "}\n\nmain();\n") {
		t.Fatalf("expected a trailing main call, got:\n%s", got)
	}
}

func TestEmitClasses(t *testing.T) {
	got := emitMono(t, loadFile(t, "classes.yaml"), Options{})
	for _, want := range []string{
		"const global_hello = 'hello';\n",
		"const global_world = (global_hello + ' world');\n",
		"class Pass {\n}\n",
		"class Base {\n  static MULTIPLIER = 2;\n  static static_value = (global_world + '!');\n",
		"  constructor(base_number = 21) {\n    var local_number = 9;\n    this._number = (base_number * Base.MULTIPLIER);\n",
		"    this.things = [global_hello, local_number, Base.static_value, this._number, 'thing'];\n",
		"    console.log('Base.action: '+this._number);\n",
		"  static class_action() {\n    console.log('Base.class_action: '+Base.MULTIPLIER);\n",
		"    this.things.push(thing);\n    return this;\n",
		"class SubClass extends Base {\n  static FORTY = 'forty';\n  constructor(two) {\n    super();\n",
		"    this.word = (SubClass.FORTY + two);\n",
		"    if (this.base.things.length) {\n      if ((this.base.things.length > 1)) {\n",
		"    } else {\n      console.log('nothing');\n    }\n",
		"    super.action();\n",
		"    super.class_action();\n    SubClass.static_action();\n",
		"    console.log('SubClass.static_action: '+Base.MULTIPLIER);\n",
		"function make_base() {\n  return new Base();\n}\n",
		"  var b = new Base();\n  b.action();\n  Base.class_action();\n  Base.static_action();\n",
		"  var sc = new SubClass('two');\n",
		"  Base.static_action();\n}\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Count(got, "super();") != 1 {
		t.Fatalf("SubClass must call the parent constructor exactly once:\n%s", got)
	}
}

func TestEmitContainers(t *testing.T) {
	m := loadString(t, `
module: containers
funcs:
  - name: main
    body:
      - let: strs
        value: {list: [{str: one}, {str: two}]}
      - expr: {call: {attr: append, of: strs}, args: [{str: it's}]}
      - expr: {call: print, args: [{call: {attr: pop, of: strs}}]}
      - expr: {call: {attr: insert, of: strs}, args: [1, {str: blah}]}
      - let: three
        value:
          dict:
            - {key: {str: one}, value: 1}
            - {key: {str: two}, value: 2}
      - expr: {call: print, args: [{call: {attr: keys, of: three}}, {call: len, args: [three]}]}
      - assign: {index: {str: three}, of: three}
        value: 3
      - assign: {index: {str: one}, of: three}
        op: "+"
        value: 10
      - for: [key, val]
        in: {call: {attr: items, of: three}}
        body:
          - expr: {call: print, args: [{format: ["item: ", {name: key}, " ", {name: val}]}]}
      - for: key
        in: three
        body:
          - if: {binary: "in", left: key, right: three}
            then:
              - expr: {call: print, args: [{index: key, of: three}]}
      - for: i
        in: {call: range, args: [1, 4]}
        body:
          - if: {binary: "==", left: {binary: "//", left: i, right: 2}, right: 1}
            then: [break]
            else:
              - if: {unary: not, operand: strs}
                then: [continue]
      - let: vals
        value: {call: {attr: values, of: three}}
      - expr: {call: print, args: [{index: -1, of: strs}, vals, {binary: "+", left: strs, right: vals}]}
`)
	got, err := EmitModule(m, Options{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	for _, want := range []string{
		"  var strs = ['one', 'two'];\n",
		"  strs.push('it\\'s');\n",
		"  console.log(strs.pop());\n",
		"  strs.splice(1, 0, 'blah');\n",
		"  var three = new Map([['one', 1], ['two', 2]]);\n",
		"  console.log(...three.keys(), three.size);\n",
		"  three.set('three', 3);\n",
		"  three.set('one', (three.get('one') + 10));\n",
		"  for (var [key, val] of three.entries()) {\n    console.log('item: '+key+' '+val);\n  }\n",
		"  for (var key of three.keys()) {\n    if (three.has(key)) {\n      console.log(three.get(key));\n",
		"  for (var i = 1; i < 4; i++) {\n    if ((Math.floor(i / 2) === 1)) {\n      break;\n    } else if (!strs.length) {\n      continue;\n    }\n",
		"  var vals = [...three.values()];\n",
		"  console.log(strs.at(-1), vals, strs.concat(vals));\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestEmitRejectsGenericClasses(t *testing.T) {
	m := loadFile(t, "generics.yaml")
	if _, err := EmitModule(m, Options{}); err == nil || !strings.Contains(err.Error(), "Counter") {
		t.Fatalf("expected a generic class error, got %v", err)
	}
}
