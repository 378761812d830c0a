package store

import (
	"testing"

	"github.com/chazu/luadoc/doc"
)

func sampleModule() *doc.Module {
	m := doc.NewModule("foo")
	m.Filename = "foo.lua"
	m.ShortDesc = "Test module."

	fn := doc.NewFunction("greet")
	fn.ShortDesc = "Greets someone."
	fn.Params = append(fn.Params, &doc.Param{Name: "name", Type: doc.Primitive("string")})
	fn.Returns = append(fn.Returns, &doc.Return{Type: doc.Primitive("string"), Desc: "the greeting"})
	m.Functions = append(m.Functions, fn)

	c := doc.NewClass("foo.List", "List")
	method := doc.NewFunction("append")
	method.Params = append(method.Params, &doc.Param{Name: "item", Type: doc.Primitive("any")})
	c.Methods = append(c.Methods, method)
	c.Fields = append(c.Fields, &doc.Field{
		Name:       "n",
		Type:       doc.Primitive("number"),
		Visibility: doc.Public,
	})
	m.Classes = append(m.Classes, c)

	return m
}

func TestModuleCBORRoundTrip(t *testing.T) {
	m := sampleModule()

	data, err := MarshalModule(m)
	if err != nil {
		t.Fatalf("MarshalModule: %v", err)
	}
	got, err := UnmarshalModule(data)
	if err != nil {
		t.Fatalf("UnmarshalModule: %v", err)
	}

	if got.Name != "foo" || got.Filename != "foo.lua" {
		t.Errorf("module = %q / %q", got.Name, got.Filename)
	}
	if len(got.Functions) != 1 || got.Functions[0].Name != "greet" {
		t.Fatalf("functions = %+v", got.Functions)
	}
	if got.Functions[0].Params[0].Type.Name != "string" {
		t.Errorf("param type = %s", got.Functions[0].Params[0].Type)
	}
	if len(got.Classes) != 1 || got.Classes[0].NameInSource != "List" {
		t.Fatalf("classes = %+v", got.Classes)
	}
	if got.Classes[0].Methods[0].Name != "append" {
		t.Errorf("method = %q", got.Classes[0].Methods[0].Name)
	}
}

func TestMarshalModuleDeterministic(t *testing.T) {
	a, err := MarshalModule(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalModule(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("two encodings of the same module differ")
	}
}

func TestSourceKey(t *testing.T) {
	a := SourceKey([]byte("local x = 1"))
	b := SourceKey([]byte("local x = 1"))
	c := SourceKey([]byte("local x = 2"))
	if a != b {
		t.Error("same source produced different keys")
	}
	if a == c {
		t.Error("different sources produced the same key")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64", len(a))
	}
}

func TestCachePutGet(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}

	key := SourceKey([]byte("source text"))

	// Miss before Put.
	if m, err := cache.Get(key); err != nil || m != nil {
		t.Fatalf("Get before Put = %v, %v", m, err)
	}

	if err := cache.Put(key, sampleModule()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := cache.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != "foo" {
		t.Fatalf("Get = %+v", got)
	}
}
