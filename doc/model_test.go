package doc

import (
	"encoding/json"
	"testing"
)

func TestTypeExprMarshalPrimitive(t *testing.T) {
	got, err := json.Marshal(Primitive("string"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != `{"id":"string"}` {
		t.Errorf("primitive JSON = %s", got)
	}
}

func TestTypeExprMarshalCustom(t *testing.T) {
	got, err := json.Marshal(Custom("foo.List"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != `{"id":"custom","name":"foo.List"}` {
		t.Errorf("custom JSON = %s", got)
	}
}

func TestTypeExprMarshalTable(t *testing.T) {
	got, err := json.Marshal(Table(Primitive("string"), Primitive("number")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"table","key":{"id":"string"},"value":{"id":"number"}}`
	if string(got) != want {
		t.Errorf("table JSON = %s, want %s", got, want)
	}
}

func TestTypeExprMarshalCallable(t *testing.T) {
	fn := Callable(
		[]TypeArg{{Name: "a", Type: Primitive("any")}},
		[]*TypeExpr{Primitive("any")},
	)
	got, err := json.Marshal(fn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"callable","arg_types":[{"id":"any"}],"return_types":[{"id":"any"}]}`
	if string(got) != want {
		t.Errorf("callable JSON = %s, want %s", got, want)
	}
}

func TestTypeExprMarshalCallableEmpty(t *testing.T) {
	got, err := json.Marshal(Callable(nil, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"callable","arg_types":[],"return_types":[]}`
	if string(got) != want {
		t.Errorf("empty callable JSON = %s, want %s", got, want)
	}
}

func TestTypeExprMarshalUnion(t *testing.T) {
	got, err := json.Marshal(Union([]*TypeExpr{Primitive("string"), Primitive("nil")}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"union","types":[{"id":"string"},{"id":"nil"}]}`
	if string(got) != want {
		t.Errorf("union JSON = %s, want %s", got, want)
	}
}

func TestTypeExprString(t *testing.T) {
	tests := []struct {
		expr *TypeExpr
		want string
	}{
		{Primitive("number"), "number"},
		{Custom("pl.List"), "pl.List"},
		{Table(Primitive("string"), Custom("Car")), "table<string, Car>"},
		{Callable([]TypeArg{{Name: "a", Type: Primitive("any")}}, []*TypeExpr{Primitive("any")}), "fun(a: any):any"},
		{Union([]*TypeExpr{Primitive("string"), Primitive("nil")}), "string|nil"},
	}
	for _, tc := range tests {
		if got := tc.expr.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestModuleJSONShape(t *testing.T) {
	m := NewModule("foo")
	m.Filename = "foo.lua"

	c := NewClass("foo.List", "List")
	c.InheritsFrom = append(c.InheritsFrom, "foo.Base")
	m.Classes = append(m.Classes, c)

	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"filename":"foo.lua","name":"foo","is_class_mod":false,` +
		`"short_desc":"","desc":"","usage":"",` +
		`"classes":[{"name":"foo.List","name_in_source":"List","methods":[],` +
		`"desc":"","usage":"","inherits_from":["foo.Base"],"fields":[]}],` +
		`"functions":[],"data":[]}`
	if string(got) != want {
		t.Errorf("module JSON =\n%s\nwant\n%s", got, want)
	}
}

func TestResolveParent(t *testing.T) {
	m := NewModule("foo")
	base := NewClass("foo.Base", "Base")
	list := NewClass("foo.List", "List")
	list.InheritsFrom = append(list.InheritsFrom, "foo.Base")
	m.Classes = append(m.Classes, base, list)

	if got := m.ResolveParent("foo.Base"); got != base {
		t.Errorf("ResolveParent(foo.Base) = %v", got)
	}
	if got := m.ResolveParent("Base"); got != base {
		t.Errorf("ResolveParent by name in source = %v", got)
	}
	if got := m.ResolveParent("external.Thing"); got != nil {
		t.Errorf("ResolveParent(external) = %v, want nil", got)
	}
}
