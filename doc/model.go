// Package doc defines the documentation model extracted from Lua sources.
//
// The JSON shape produced by this package is a compatibility contract:
// any serializer or renderer built on top of the extractor consumes
// exactly these fields.
package doc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Visibility of a method or field.
type Visibility string

const (
	Public    Visibility = "public"
	Private   Visibility = "private"
	Protected Visibility = "protected"
)

// ---------------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------------

// TypeKind discriminates the TypeExpr variants.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindCustom
	KindTable
	KindCallable
	KindUnion
)

// Primitive type identifiers. Anything else is a custom name.
var primitiveIDs = map[string]bool{
	"string":   true,
	"number":   true,
	"boolean":  true,
	"table":    true,
	"any":      true,
	"function": true,
	"nil":      true,
	"void":     true,
}

// IsPrimitiveID reports whether id names a primitive type.
func IsPrimitiveID(id string) bool { return primitiveIDs[id] }

// TypeExpr is a tagged variant describing a documented type. Exactly the
// fields relevant to Kind are populated; the rest stay zero.
type TypeExpr struct {
	Kind TypeKind `cbor:"1,keyasint"`

	// Name holds the primitive id (KindPrimitive) or the possibly dotted
	// class name (KindCustom).
	Name string `cbor:"2,keyasint,omitempty"`

	// Table key/value types (KindTable).
	Key   *TypeExpr `cbor:"3,keyasint,omitempty"`
	Value *TypeExpr `cbor:"4,keyasint,omitempty"`

	// Callable signature (KindCallable). Arg names are kept for overload
	// materialization but do not serialize to JSON.
	Args    []TypeArg   `cbor:"5,keyasint,omitempty"`
	Results []*TypeExpr `cbor:"6,keyasint,omitempty"`

	// Union members (KindUnion).
	Members []*TypeExpr `cbor:"7,keyasint,omitempty"`
}

// TypeArg is a named argument inside a callable type expression.
type TypeArg struct {
	Name string    `cbor:"1,keyasint,omitempty"`
	Type *TypeExpr `cbor:"2,keyasint"`
}

// Primitive returns a primitive type expression.
func Primitive(id string) *TypeExpr { return &TypeExpr{Kind: KindPrimitive, Name: id} }

// Custom returns a reference to a user-defined type by name.
func Custom(name string) *TypeExpr { return &TypeExpr{Kind: KindCustom, Name: name} }

// Table returns a table<key, value> type expression.
func Table(key, value *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindTable, Key: key, Value: value}
}

// Callable returns a fun(...) type expression.
func Callable(args []TypeArg, results []*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindCallable, Args: args, Results: results}
}

// Union returns a union type expression over members.
func Union(members []*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindUnion, Members: members}
}

// ArgTypes returns the types of a callable's arguments, in order.
func (t *TypeExpr) ArgTypes() []*TypeExpr {
	types := make([]*TypeExpr, 0, len(t.Args))
	for _, a := range t.Args {
		types = append(types, a.Type)
	}
	return types
}

// String renders the type expression back in doc-comment syntax.
func (t *TypeExpr) String() string {
	if t == nil {
		return "any"
	}
	switch t.Kind {
	case KindPrimitive, KindCustom:
		return t.Name
	case KindTable:
		return fmt.Sprintf("table<%s, %s>", t.Key, t.Value)
	case KindCallable:
		var sb strings.Builder
		sb.WriteString("fun(")
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if a.Name != "" {
				sb.WriteString(a.Name)
				sb.WriteString(": ")
			}
			sb.WriteString(a.Type.String())
		}
		sb.WriteString(")")
		for i, r := range t.Results {
			if i == 0 {
				sb.WriteString(":")
			} else {
				sb.WriteString(",")
			}
			sb.WriteString(r.String())
		}
		return sb.String()
	case KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return strings.Join(parts, "|")
	}
	return "any"
}

// MarshalJSON flattens the variant into the id-discriminated wire shape:
// {"id":"string"}, {"id":"custom","name":...}, {"id":"table","key":...,
// "value":...}, {"id":"callable","arg_types":[...],"return_types":[...]},
// {"id":"union","types":[...]}.
func (t *TypeExpr) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindPrimitive:
		return json.Marshal(struct {
			ID string `json:"id"`
		}{t.Name})
	case KindCustom:
		return json.Marshal(struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}{"custom", t.Name})
	case KindTable:
		return json.Marshal(struct {
			ID    string    `json:"id"`
			Key   *TypeExpr `json:"key"`
			Value *TypeExpr `json:"value"`
		}{"table", t.Key, t.Value})
	case KindCallable:
		args := t.ArgTypes()
		results := t.Results
		if results == nil {
			results = []*TypeExpr{}
		}
		return json.Marshal(struct {
			ID          string      `json:"id"`
			ArgTypes    []*TypeExpr `json:"arg_types"`
			ReturnTypes []*TypeExpr `json:"return_types"`
		}{"callable", args, results})
	case KindUnion:
		return json.Marshal(struct {
			ID    string      `json:"id"`
			Types []*TypeExpr `json:"types"`
		}{"union", t.Members})
	}
	return nil, fmt.Errorf("doc: unknown type kind %d", t.Kind)
}

// ---------------------------------------------------------------------------
// Entities
// ---------------------------------------------------------------------------

// Param documents a single function parameter. The vararg parameter is
// named "...".
type Param struct {
	Name         string    `json:"name" cbor:"1,keyasint"`
	Desc         string    `json:"desc" cbor:"2,keyasint,omitempty"`
	Type         *TypeExpr `json:"type" cbor:"3,keyasint"`
	IsOpt        bool      `json:"is_opt" cbor:"4,keyasint,omitempty"`
	DefaultValue string    `json:"default_value" cbor:"5,keyasint,omitempty"`
}

// Return documents a single return value.
type Return struct {
	Desc string    `json:"desc" cbor:"1,keyasint,omitempty"`
	Type *TypeExpr `json:"type" cbor:"2,keyasint"`
}

// Field documents a class field or module data declaration.
type Field struct {
	Name       string     `json:"name" cbor:"1,keyasint"`
	Desc       string     `json:"desc" cbor:"2,keyasint,omitempty"`
	Type       *TypeExpr  `json:"type" cbor:"3,keyasint"`
	Visibility Visibility `json:"visibility" cbor:"4,keyasint"`
}

// Function documents a function or method. Several entries with the same
// name may coexist under one class: each @overload materializes an extra
// entry after the base signature.
type Function struct {
	Name         string     `json:"name" cbor:"1,keyasint"`
	ShortDesc    string     `json:"short_desc" cbor:"2,keyasint,omitempty"`
	Desc         string     `json:"desc" cbor:"3,keyasint,omitempty"`
	Params       []*Param   `json:"params" cbor:"4,keyasint"`
	Returns      []*Return  `json:"returns" cbor:"5,keyasint"`
	Usage        string     `json:"usage" cbor:"6,keyasint,omitempty"`
	IsVirtual    bool       `json:"is_virtual" cbor:"7,keyasint,omitempty"`
	IsAbstract   bool       `json:"is_abstract" cbor:"8,keyasint,omitempty"`
	IsDeprecated bool       `json:"is_deprecated" cbor:"9,keyasint,omitempty"`
	IsStatic     bool       `json:"is_static" cbor:"10,keyasint,omitempty"`
	Visibility   Visibility `json:"visibility" cbor:"11,keyasint"`
}

// NewFunction returns a Function with empty, non-nil collections.
func NewFunction(name string) *Function {
	return &Function{
		Name:       name,
		Params:     []*Param{},
		Returns:    []*Return{},
		Visibility: Public,
	}
}

// Class documents a class table. InheritsFrom holds bare parent names;
// resolution against sibling classes is a separate optional step.
type Class struct {
	Name         string      `json:"name" cbor:"1,keyasint"`
	NameInSource string      `json:"name_in_source" cbor:"2,keyasint,omitempty"`
	Methods      []*Function `json:"methods" cbor:"3,keyasint"`
	Desc         string      `json:"desc" cbor:"4,keyasint,omitempty"`
	Usage        string      `json:"usage" cbor:"5,keyasint,omitempty"`
	InheritsFrom []string    `json:"inherits_from" cbor:"6,keyasint"`
	Fields       []*Field    `json:"fields" cbor:"7,keyasint"`
}

// NewClass returns a Class with empty, non-nil collections.
func NewClass(name, nameInSource string) *Class {
	return &Class{
		Name:         name,
		NameInSource: nameInSource,
		Methods:      []*Function{},
		InheritsFrom: []string{},
		Fields:       []*Field{},
	}
}

// Module is the root entity for one source file. It is immutable once the
// model builder returns it.
type Module struct {
	Filename   string      `json:"filename" cbor:"1,keyasint,omitempty"`
	Name       string      `json:"name" cbor:"2,keyasint"`
	IsClassMod bool        `json:"is_class_mod" cbor:"3,keyasint,omitempty"`
	ShortDesc  string      `json:"short_desc" cbor:"4,keyasint,omitempty"`
	Desc       string      `json:"desc" cbor:"5,keyasint,omitempty"`
	Usage      string      `json:"usage" cbor:"6,keyasint,omitempty"`
	Classes    []*Class    `json:"classes" cbor:"7,keyasint"`
	Functions  []*Function `json:"functions" cbor:"8,keyasint"`
	Data       []*Field    `json:"data" cbor:"9,keyasint"`
}

// NewModule returns a Module with empty, non-nil collections.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Classes:   []*Class{},
		Functions: []*Function{},
		Data:      []*Field{},
	}
}

// ResolveParent looks up a parent class by name among the module's own
// classes. It matches either the declared class name or the name in
// source, and returns nil for external or unresolved parents.
func (m *Module) ResolveParent(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name || (c.NameInSource != "" && c.NameInSource == name) {
			return c
		}
	}
	return nil
}

// Class returns the class with the given declared name, or nil.
func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}
