package jsonschema

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/goccy/go-json"
)

// A Schema represents a decoded json-schema, either the boolean form
// or the object form with keyword slots.
type Schema struct {
	// Always is non-nil when the schema was the boolean form:
	// true accepts any value, false rejects every value.
	Always *bool

	ID          string
	Ref         string
	Title       string
	Description string
	Default     any
	Examples    []any

	// number validations
	MultipleOf       *big.Rat
	Maximum          *big.Rat
	Minimum          *big.Rat
	ExclusiveMaximum *ExclusiveBoundary
	ExclusiveMinimum *ExclusiveBoundary

	// string validations
	MinLength int // -1 if not specified.
	MaxLength int // -1 if not specified.
	Pattern   Regexp
	Format    string

	// array validations
	Items           any // nil or *Schema or []*Schema
	AdditionalItems any // nil or bool or *Schema
	MinItems        int // -1 if not specified.
	MaxItems        int // -1 if not specified.
	UniqueItems     bool
	Contains        *Schema

	// object validations
	MinProperties        int // -1 if not specified.
	MaxProperties        int // -1 if not specified.
	Required             []string
	Properties           Schemata
	PatternProperties    []PatternSchema
	AdditionalProperties any // nil or bool or *Schema
	Dependencies         []Dependency
	PropertyNames        *Schema

	// type agnostic validations
	Enum  []any
	Const []any // first element is the constant. slice is used to capture nil constant.
	Types Type
	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema

	Definitions Schemata

	// Source is the raw json value this schema was decoded from.
	// Reference resolution digs into Source with json-pointers, so it
	// must be retained exactly as decoded.
	Source any
}

// BooleanSchema returns the boolean form schema for b.
func BooleanSchema(b bool) *Schema {
	return &Schema{Always: &b, Source: b}
}

func newSchema() *Schema {
	return &Schema{
		MinLength:     -1,
		MaxLength:     -1,
		MinItems:      -1,
		MaxItems:      -1,
		MinProperties: -1,
		MaxProperties: -1,
		Types:         AnyType(),
	}
}

// --

// Type constrains the json kind of a value. The zero value allows any kind.
type Type struct {
	kinds    []string // sorted. nil means any kind.
	nullable bool     // kind-or-null form
}

// AnyType places no constraint on the value kind.
func AnyType() Type { return Type{} }

// SingleType allows values of kind t only.
func SingleType(t string) Type { return Type{kinds: []string{t}} }

// NullableType allows values of kind t, or null.
func NullableType(t string) Type { return Type{kinds: []string{t}, nullable: true} }

// UnionType allows values of any of the given kinds. Duplicates are
// dropped and the set is kept sorted.
func UnionType(ts ...string) Type {
	seen := make(map[string]struct{}, len(ts))
	var kinds []string
	for _, t := range ts {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			kinds = append(kinds, t)
		}
	}
	sort.Strings(kinds)
	return Type{kinds: kinds}
}

// IsAny reports whether t allows every kind.
func (t Type) IsAny() bool { return len(t.kinds) == 0 }

// Kinds returns the allowed kinds, including "null" for the nullable form.
func (t Type) Kinds() []string {
	if t.IsAny() {
		return nil
	}
	kinds := append([]string(nil), t.kinds...)
	if t.nullable {
		kinds = append(kinds, "null")
	}
	return kinds
}

// contains tells whether json kind vt satisfies t. integral numbers
// satisfy "integer".
func (t Type) contains(v any, vt string) bool {
	if t.IsAny() {
		return true
	}
	if t.nullable && vt == "null" {
		return true
	}
	for _, k := range t.kinds {
		if k == vt {
			return true
		}
		if k == "integer" && vt == "number" {
			if num, ok := rat(v); ok && num.IsInt() {
				return true
			}
		}
	}
	return false
}

var typeNames = []string{"array", "boolean", "integer", "null", "number", "object", "string"}

func validTypeName(t string) bool {
	for _, name := range typeNames {
		if t == name {
			return true
		}
	}
	return false
}

// --

// ExclusiveBoundary bridges the draft-04 boolean form of
// exclusiveMaximum/exclusiveMinimum with the draft-06 numeric form.
type ExclusiveBoundary struct {
	Bool   *bool
	Number *big.Rat
}

func boolBoundary(b bool) *ExclusiveBoundary    { return &ExclusiveBoundary{Bool: &b} }
func numBoundary(n *big.Rat) *ExclusiveBoundary { return &ExclusiveBoundary{Number: n} }

// strict tells whether the boundary turns the paired inclusive bound
// into a strict one (draft-04 boolean form).
func (eb *ExclusiveBoundary) strict() bool {
	return eb != nil && eb.Bool != nil && *eb.Bool
}

// --

// NamedSchema is a single name to schema binding.
type NamedSchema struct {
	Name   string
	Schema *Schema
}

// Schemata is an ordered list of name to schema bindings. Insertion
// order is preserved; Set overwrites in place.
type Schemata []NamedSchema

// Get returns the schema registered under name.
func (s Schemata) Get(name string) (*Schema, bool) {
	for _, ns := range s {
		if ns.Name == name {
			return ns.Schema, true
		}
	}
	return nil, false
}

// Set returns s with sch registered under name, overwriting any
// earlier binding with the same name.
func (s Schemata) Set(name string, sch *Schema) Schemata {
	for i, ns := range s {
		if ns.Name == name {
			out := append(Schemata(nil), s...)
			out[i].Schema = sch
			return out
		}
	}
	return append(s, NamedSchema{name, sch})
}

// PatternSchema binds a property-name pattern to a schema.
type PatternSchema struct {
	Pattern Regexp
	Schema  *Schema
}

// Dependency is triggered by the presence of a property: either the
// whole object must validate against Schema, or the properties listed
// in Required must also be present.
type Dependency struct {
	Prop     string
	Schema   *Schema
	Required []string
}

// --

// jsonType returns the json kind of given value v.
func jsonType(v any) (string, error) {
	switch v.(type) {
	case nil:
		return "null", nil
	case bool:
		return "boolean", nil
	case json.Number, float64, float32, int, int32, int64:
		return "number", nil
	case string:
		return "string", nil
	case []any:
		return "array", nil
	case map[string]any:
		return "object", nil
	default:
		return "", InvalidJSONTypeError(fmt.Sprintf("%T", v))
	}
}

// rat converts a json number value to *big.Rat.
func rat(v any) (*big.Rat, bool) {
	switch v.(type) {
	case json.Number, float64, float32, int, int32, int64:
		return new(big.Rat).SetString(fmt.Sprint(v))
	}
	return nil, false
}

// equals tells if two json values are equal. numbers compare by value,
// so 1 and 1.0 are equal.
func equals(v1, v2 any) (bool, error) {
	t1, err := jsonType(v1)
	if err != nil {
		return false, err
	}
	t2, err := jsonType(v2)
	if err != nil {
		return false, err
	}
	if t1 != t2 {
		return false, nil
	}
	switch t1 {
	case "array":
		arr1, arr2 := v1.([]any), v2.([]any)
		if len(arr1) != len(arr2) {
			return false, nil
		}
		for i := range arr1 {
			eq, err := equals(arr1[i], arr2[i])
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case "object":
		obj1, obj2 := v1.(map[string]any), v2.(map[string]any)
		if len(obj1) != len(obj2) {
			return false, nil
		}
		for k, item1 := range obj1 {
			item2, ok := obj2[k]
			if !ok {
				return false, nil
			}
			eq, err := equals(item1, item2)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case "number":
		num1, ok1 := rat(v1)
		num2, ok2 := rat(v2)
		if !ok1 {
			return false, InvalidJSONTypeError(fmt.Sprint(v1))
		}
		if !ok2 {
			return false, InvalidJSONTypeError(fmt.Sprint(v2))
		}
		return num1.Cmp(num2) == 0, nil
	default:
		return v1 == v2, nil
	}
}

// checkJSONValue verifies that v contains only json values.
func checkJSONValue(v any) error {
	t, err := jsonType(v)
	if err != nil {
		return err
	}
	switch t {
	case "array":
		for _, item := range v.([]any) {
			if err := checkJSONValue(item); err != nil {
				return err
			}
		}
	case "object":
		for _, pvalue := range v.(map[string]any) {
			if err := checkJSONValue(pvalue); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortedKeys returns the keys of obj in sorted order, so that
// validation output does not depend on map iteration order.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
