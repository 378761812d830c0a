package extract

import (
	"reflect"
	"testing"

	"github.com/chazu/luadoc/doc"
)

const listSource = `--- Collection helpers.
--- @module foo

--- The base for all containers.
--- @class foo.Base
local Base = {}

--- A dynamic list.
--- @class foo.List: foo.Base
local List = {}

--- Creates a list.
--- @param items table<number, any> initial contents
--- @return foo.List the new list
function List.new(items)
  return setmetatable({}, List)
end

--- Splits the list at each separator.
--- @param sep string the separator
--- @overload fun()
--- @return foo.List
function List:split(sep)
  return List.new()
end

--- Applies a function to each item.
--- @param fun fun(item: any): any
--- @param ... any extra arguments
function List:map(fun, ...)
end

--- Internal bookkeeping.
function List:_more_private(n)
end
`

func TestParseListModule(t *testing.T) {
	p := New(Options{})
	mod, err := p.Parse("list.lua", listSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Warnings()) != 0 {
		t.Fatalf("warnings = %v", p.Warnings())
	}

	if mod.Name != "foo" || mod.Filename != "list.lua" {
		t.Errorf("module = %q / %q", mod.Name, mod.Filename)
	}
	if mod.ShortDesc != "Collection helpers." {
		t.Errorf("short = %q", mod.ShortDesc)
	}
	if len(mod.Functions) != 0 || len(mod.Data) != 0 {
		t.Errorf("free functions = %d, data = %d", len(mod.Functions), len(mod.Data))
	}
	if len(mod.Classes) != 2 {
		t.Fatalf("classes = %d, want 2", len(mod.Classes))
	}

	base := mod.Classes[0]
	if base.Name != "foo.Base" || base.NameInSource != "Base" {
		t.Errorf("base = %q / %q", base.Name, base.NameInSource)
	}

	list := mod.Classes[1]
	if list.Name != "foo.List" || list.NameInSource != "List" {
		t.Errorf("list = %q / %q", list.Name, list.NameInSource)
	}
	if len(list.InheritsFrom) != 1 || list.InheritsFrom[0] != "foo.Base" {
		t.Errorf("inherits = %v", list.InheritsFrom)
	}
	if got := mod.ResolveParent(list.InheritsFrom[0]); got != base {
		t.Error("ResolveParent missed foo.Base")
	}

	// split appears twice: the declaration and its @overload variant.
	wantMethods := []string{"new", "split", "split", "map", "_more_private"}
	if len(list.Methods) != len(wantMethods) {
		t.Fatalf("methods = %d, want %d", len(list.Methods), len(wantMethods))
	}
	for i, want := range wantMethods {
		if list.Methods[i].Name != want {
			t.Errorf("method[%d] = %q, want %q", i, list.Methods[i].Name, want)
		}
	}
}

func TestParseListMethodDetails(t *testing.T) {
	p := New(Options{})
	mod, err := p.Parse("list.lua", listSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list := mod.Class("foo.List")
	if list == nil {
		t.Fatal("class foo.List not found")
	}

	newFn := list.Methods[0]
	if !newFn.IsStatic {
		t.Error("new: IsStatic = false, want true")
	}
	if len(newFn.Params) != 1 || newFn.Params[0].Name != "items" || newFn.Params[0].Type.Kind != doc.KindTable {
		t.Errorf("new params = %+v", newFn.Params)
	}
	if len(newFn.Returns) != 1 || newFn.Returns[0].Type.Name != "foo.List" {
		t.Errorf("new returns = %+v", newFn.Returns)
	}

	split := list.Methods[1]
	if split.IsStatic {
		t.Error("split: IsStatic = true, want false")
	}
	if len(split.Params) != 1 || split.Params[0].Name != "sep" || split.Params[0].Type.Name != "string" {
		t.Errorf("split params = %+v", split.Params)
	}
	if split.Params[0].Desc != "the separator" {
		t.Errorf("split param desc = %q", split.Params[0].Desc)
	}

	overload := list.Methods[2]
	if len(overload.Params) != 0 || len(overload.Returns) != 0 {
		t.Errorf("overload = %d params, %d returns", len(overload.Params), len(overload.Returns))
	}

	mapFn := list.Methods[3]
	if len(mapFn.Params) != 2 {
		t.Fatalf("map params = %d", len(mapFn.Params))
	}
	if mapFn.Params[0].Name != "fun" || mapFn.Params[0].Type.Kind != doc.KindCallable {
		t.Errorf("map param[0] = %+v", mapFn.Params[0])
	}
	if mapFn.Params[1].Name != "..." || mapFn.Params[1].Desc != "extra arguments" {
		t.Errorf("map param[1] = %+v", mapFn.Params[1])
	}

	private := list.Methods[4]
	if private.Visibility != doc.Private {
		t.Errorf("_more_private visibility = %q", private.Visibility)
	}
	if private.ShortDesc != "Internal bookkeeping." {
		t.Errorf("_more_private short = %q", private.ShortDesc)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := New(Options{}).Parse("list.lua", listSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := New(Options{}).Parse("list.lua", listSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two parses of the same source differ")
	}
}

func TestParseClassMod(t *testing.T) {
	source := `--- A penlight style list.
--- @classmod pl.List
local List = {}

--- Appends an item.
--- @param item any the item
function List:append(item)
end
`
	p := New(Options{})
	mod, err := p.Parse("pl/list.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !mod.IsClassMod || mod.Name != "pl.List" {
		t.Fatalf("module = %+v", mod)
	}
	if len(mod.Classes) != 1 {
		t.Fatalf("classes = %d", len(mod.Classes))
	}
	c := mod.Classes[0]
	if c.Name != "pl.List" || c.NameInSource != "List" {
		t.Errorf("class = %q / %q", c.Name, c.NameInSource)
	}
	if c.Desc != "A penlight style list." {
		t.Errorf("class desc = %q", c.Desc)
	}
	if len(c.Methods) != 1 || c.Methods[0].Name != "append" {
		t.Errorf("methods = %+v", c.Methods)
	}
}

func TestParseAutoCreatesClassForMethods(t *testing.T) {
	source := `--- Honks.
function Car:honk()
end
`
	p := New(Options{})
	mod, err := p.Parse("car.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mod.Name != "unknown" {
		t.Errorf("module name = %q, want unknown", mod.Name)
	}
	if len(mod.Classes) != 1 || mod.Classes[0].Name != "Car" {
		t.Fatalf("classes = %+v", mod.Classes)
	}
	if len(mod.Classes[0].Methods) != 1 {
		t.Errorf("methods = %d", len(mod.Classes[0].Methods))
	}
}

func TestParseDottedCallStaysFreeFunction(t *testing.T) {
	source := `--- Makes a thing.
function factory.make()
end
`
	p := New(Options{})
	mod, err := p.Parse("f.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(mod.Classes) != 0 {
		t.Errorf("classes = %+v", mod.Classes)
	}
	if len(mod.Functions) != 1 || mod.Functions[0].Name != "make" {
		t.Fatalf("functions = %+v", mod.Functions)
	}
	if !mod.Functions[0].IsStatic {
		t.Error("dot-form function on owner: IsStatic = false")
	}
}

func TestParseParamMismatchWarns(t *testing.T) {
	source := `--- Does things.
--- @param wrong string not in the signature
function f(right)
end
`
	p := New(Options{})
	mod, err := p.Parse("m.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	warnings := p.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != WarnDeclMismatch {
		t.Fatalf("warnings = %v", warnings)
	}
	fn := mod.Functions[0]
	if len(fn.Params) != 2 {
		t.Fatalf("params = %+v", fn.Params)
	}
	if fn.Params[0].Name != "right" || fn.Params[0].Type.Name != "any" {
		t.Errorf("param[0] = %+v", fn.Params[0])
	}
	if fn.Params[1].Name != "wrong" {
		t.Errorf("param[1] = %+v", fn.Params[1])
	}
}

func TestParseSecondModuleWarns(t *testing.T) {
	source := `--- @module one

--- @module two
`
	p := New(Options{})
	mod, err := p.Parse("m.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mod.Name != "one" {
		t.Errorf("module = %q, want one", mod.Name)
	}
	warnings := p.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != WarnTagSyntax {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParsePureDocFunctionOverAssignment(t *testing.T) {
	source := `--- @class Car
local Car = {}

--- Reads the current speed.
--- @function Car.get_speed
--- @return number
Car.get_speed = utils.measure_speed
`
	p := New(Options{})
	mod, err := p.Parse("car.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := mod.Class("Car")
	if c == nil {
		t.Fatal("class Car not found")
	}
	if len(c.Methods) != 1 || c.Methods[0].Name != "get_speed" {
		t.Fatalf("methods = %+v", c.Methods)
	}
	if len(c.Methods[0].Returns) != 1 || c.Methods[0].Returns[0].Type.Name != "number" {
		t.Errorf("returns = %+v", c.Methods[0].Returns)
	}
}

func TestParseDocumentedModuleData(t *testing.T) {
	source := `--- @module limits

--- Maximum speed in km/h.
MAX_SPEED = 200
`
	p := New(Options{})
	mod, err := p.Parse("limits.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(mod.Data) != 1 {
		t.Fatalf("data = %+v", mod.Data)
	}
	f := mod.Data[0]
	if f.Name != "MAX_SPEED" || f.Type.Name != "number" || f.Desc != "Maximum speed in km/h." {
		t.Errorf("field = %+v type %s", f, f.Type)
	}
}

func TestParseFieldTagsOnClass(t *testing.T) {
	source := `--- A car.
--- @class Car
--- @field speed number current speed
--- @field _odometer number
local Car = {}
`
	p := New(Options{})
	mod, err := p.Parse("car.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := mod.Class("Car")
	if c == nil || len(c.Fields) != 2 {
		t.Fatalf("class = %+v", c)
	}
	if c.Fields[0].Name != "speed" || c.Fields[0].Visibility != doc.Public {
		t.Errorf("field[0] = %+v", c.Fields[0])
	}
	if c.Fields[1].Visibility != doc.Private {
		t.Errorf("field[1] = %+v", c.Fields[1])
	}
}

func TestParseLexErrorIsFatal(t *testing.T) {
	_, err := New(Options{}).Parse("bad.lua", "x = 'unterminated\n")
	if err == nil {
		t.Fatal("no error")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("err = %T, want *LexError", err)
	}
}

func TestParseStructureErrorIsFatal(t *testing.T) {
	_, err := New(Options{}).Parse("bad.lua", "function f()\n  x = 1\n")
	if err == nil {
		t.Fatal("no error")
	}
	if _, ok := err.(*StructureError); !ok {
		t.Fatalf("err = %T, want *StructureError", err)
	}
}

func TestParseLdocDialect(t *testing.T) {
	source := `--- Greets someone.
--- @param name the person to greet
--- @return the greeting text
function greet(name)
end
`
	p := New(Options{Dialect: DialectLdoc})
	mod, err := p.Parse("greet.lua", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn := mod.Functions[0]
	if len(fn.Params) != 1 || fn.Params[0].Desc != "the person to greet" {
		t.Errorf("params = %+v", fn.Params)
	}
	if fn.Params[0].Type.Name != "any" {
		t.Errorf("param type = %s", fn.Params[0].Type)
	}
	if len(fn.Returns) != 1 || fn.Returns[0].Desc != "the greeting text" {
		t.Errorf("returns = %+v", fn.Returns)
	}
}
