package extract

import (
	"testing"

	"github.com/chazu/luadoc/doc"
)

func TestParseTypePrimitives(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"string", "string"},
		{"number", "number"},
		{"boolean", "boolean"},
		{"bool", "boolean"},
		{"int", "number"},
		{"float", "number"},
		{"func", "function"},
		{"tab", "table"},
		{"any", "any"},
		{"nil", "nil"},
		{"void", "void"},
	}
	for _, tc := range tests {
		expr, err := ParseTypeExpr(tc.input)
		if err != nil {
			t.Errorf("ParseTypeExpr(%q): %v", tc.input, err)
			continue
		}
		if expr.Kind != doc.KindPrimitive || expr.Name != tc.want {
			t.Errorf("ParseTypeExpr(%q) = %s, want primitive %s", tc.input, expr, tc.want)
		}
	}
}

func TestParseTypeCustom(t *testing.T) {
	for _, input := range []string{"Foo", "pl.List", "a.b.c", "pl.List[]"} {
		expr, err := ParseTypeExpr(input)
		if err != nil {
			t.Errorf("ParseTypeExpr(%q): %v", input, err)
			continue
		}
		if expr.Kind != doc.KindCustom || expr.Name != input {
			t.Errorf("ParseTypeExpr(%q) = %s, want custom %q", input, expr, input)
		}
	}
}

func TestParseTypeTable(t *testing.T) {
	expr, err := ParseTypeExpr("table<string, number>")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindTable {
		t.Fatalf("kind = %v, want table", expr.Kind)
	}
	if expr.Key.Name != "string" || expr.Value.Name != "number" {
		t.Errorf("table<%s, %s>, want table<string, number>", expr.Key, expr.Value)
	}
}

func TestParseTypeTableNested(t *testing.T) {
	expr, err := ParseTypeExpr("table<string, table<number, Foo>>")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	inner := expr.Value
	if inner.Kind != doc.KindTable || inner.Value.Name != "Foo" {
		t.Errorf("nested value = %s", inner)
	}
}

func TestParseTypeBareTableIsPrimitive(t *testing.T) {
	expr, err := ParseTypeExpr("table")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindPrimitive || expr.Name != "table" {
		t.Errorf("bare table = %s", expr)
	}
}

func TestParseTypeCallable(t *testing.T) {
	expr, err := ParseTypeExpr("fun(a: string, b: number): boolean")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindCallable {
		t.Fatalf("kind = %v, want callable", expr.Kind)
	}
	if len(expr.Args) != 2 {
		t.Fatalf("args = %d, want 2", len(expr.Args))
	}
	if expr.Args[0].Name != "a" || expr.Args[0].Type.Name != "string" {
		t.Errorf("arg[0] = %s %s", expr.Args[0].Name, expr.Args[0].Type)
	}
	if len(expr.Results) != 1 || expr.Results[0].Name != "boolean" {
		t.Errorf("results = %v", expr.Results)
	}
}

func TestParseTypeCallableNoArgs(t *testing.T) {
	expr, err := ParseTypeExpr("fun()")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindCallable || len(expr.Args) != 0 || expr.Results != nil {
		t.Errorf("fun() = %s", expr)
	}
}

func TestParseTypeCallableVararg(t *testing.T) {
	expr, err := ParseTypeExpr("fun(...)")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if len(expr.Args) != 1 || expr.Args[0].Name != "..." {
		t.Errorf("fun(...) args = %v", expr.Args)
	}
	if expr.Args[0].Type.Name != "any" {
		t.Errorf("vararg type = %s, want any", expr.Args[0].Type)
	}
}

func TestParseTypeCallableMultipleReturns(t *testing.T) {
	expr, err := ParseTypeExpr("fun(): string, number")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if len(expr.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(expr.Results))
	}
}

func TestParseTypeCallableInsideTable(t *testing.T) {
	// A comma after a nested callable's return belongs to the table,
	// not to the callable's return list.
	expr, err := ParseTypeExpr("table<fun(): string, number>")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindTable {
		t.Fatalf("kind = %v, want table", expr.Kind)
	}
	if expr.Key.Kind != doc.KindCallable || len(expr.Key.Results) != 1 {
		t.Errorf("key = %s", expr.Key)
	}
	if expr.Value.Name != "number" {
		t.Errorf("value = %s", expr.Value)
	}
}

func TestParseTypeUnion(t *testing.T) {
	expr, err := ParseTypeExpr("string|number|nil")
	if err != nil {
		t.Fatalf("ParseTypeExpr: %v", err)
	}
	if expr.Kind != doc.KindUnion || len(expr.Members) != 3 {
		t.Fatalf("union = %s", expr)
	}
	if expr.Members[2].Name != "nil" {
		t.Errorf("member[2] = %s", expr.Members[2])
	}
}

func TestParseTypeOptional(t *testing.T) {
	expr, opt, desc, err := ParseTypeString("string? the separator")
	if err != nil {
		t.Fatalf("ParseTypeString: %v", err)
	}
	if !opt {
		t.Error("opt = false, want true")
	}
	if expr.Name != "string" {
		t.Errorf("type = %s", expr)
	}
	if desc != "the separator" {
		t.Errorf("desc = %q", desc)
	}
}

func TestParseTypeTrailingDesc(t *testing.T) {
	expr, _, desc, err := ParseTypeString("table<string, number> counts per word")
	if err != nil {
		t.Fatalf("ParseTypeString: %v", err)
	}
	if expr.Kind != doc.KindTable {
		t.Errorf("type = %s", expr)
	}
	if desc != "counts per word" {
		t.Errorf("desc = %q", desc)
	}
}

func TestParseTypeMalformedFallsBack(t *testing.T) {
	tests := []string{
		"table<string,>",
		"fun(:",
		"|broken",
		"",
	}
	for _, input := range tests {
		expr, _, _, err := ParseTypeString(input)
		if err == nil {
			t.Errorf("ParseTypeString(%q): no error", input)
		}
		if expr == nil || expr.Kind != doc.KindPrimitive || expr.Name != "any" {
			t.Errorf("ParseTypeString(%q) fallback = %v, want any", input, expr)
		}
	}
}
