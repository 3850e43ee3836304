package jsonschema

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/json-tools/jsonschema/kind"
)

func decodeSchema(t *testing.T, doc string) *Schema {
	t.Helper()
	sch, err := DecodeJSON([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return sch
}

func errorList(t *testing.T, err error) ErrorList {
	t.Helper()
	el, ok := err.(ErrorList)
	if !ok {
		t.Fatalf("got %v, want ErrorList", err)
	}
	return el
}

func TestValidateBooleanSchema(t *testing.T) {
	if err := Validate(map[string]any{"a": json.Number("1")}, BooleanSchema(true)); err != nil {
		t.Errorf("true schema: %v", err)
	}
	err := Validate("anything", BooleanSchema(false))
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("false schema: %d errors", len(el))
	}
	if _, ok := el[0].Kind.(*kind.AlwaysFail); !ok {
		t.Errorf("false schema: kind = %T", el[0].Kind)
	}
}

func TestValidateInvalidJSONValue(t *testing.T) {
	err := Validate(struct{}{}, BooleanSchema(true))
	if _, ok := err.(InvalidJSONTypeError); !ok {
		t.Errorf("got %v, want InvalidJSONTypeError", err)
	}
	err = Validate(map[string]any{"a": make(chan int)}, BooleanSchema(true))
	if _, ok := err.(InvalidJSONTypeError); !ok {
		t.Errorf("nested: got %v, want InvalidJSONTypeError", err)
	}
}

func TestValidateType(t *testing.T) {
	sch := decodeSchema(t, `{"type": "integer"}`)
	if err := Validate(json.Number("3"), sch); err != nil {
		t.Errorf("integral number must satisfy integer: %v", err)
	}
	if err := Validate(json.Number("3.0"), sch); err != nil {
		t.Errorf("3.0 must satisfy integer: %v", err)
	}
	err := Validate(json.Number("3.5"), sch)
	el := errorList(t, err)
	if k, ok := el[0].Kind.(*kind.Type); !ok || k.Got != "number" {
		t.Errorf("kind = %#v", el[0].Kind)
	}

	nullable := decodeSchema(t, `{"type": ["string", "null"]}`)
	if err := Validate(nil, nullable); err != nil {
		t.Errorf("null must satisfy union with null: %v", err)
	}
}

// both draft forms of a strict upper bound must reject and accept the
// same values.
func TestValidateExclusiveBoundaryEquivalence(t *testing.T) {
	draft4 := decodeSchema(t, `{"maximum": 10, "exclusiveMaximum": true}`)
	draft6 := decodeSchema(t, `{"exclusiveMaximum": 10}`)

	for _, sch := range []*Schema{draft4, draft6} {
		if err := Validate(json.Number("9.9"), sch); err != nil {
			t.Errorf("9.9: %v", err)
		}
		err := Validate(json.Number("10"), sch)
		el := errorList(t, err)
		if _, ok := el[0].Kind.(*kind.ExclusiveMaximum); !ok {
			t.Errorf("kind = %T", el[0].Kind)
		}
	}
}

func TestValidateNumber(t *testing.T) {
	sch := decodeSchema(t, `{"minimum": 0, "multipleOf": 0.5}`)
	if err := Validate(json.Number("2.5"), sch); err != nil {
		t.Errorf("2.5: %v", err)
	}
	err := Validate(json.Number("-0.3"), sch)
	el := errorList(t, err)
	if len(el) != 2 {
		t.Fatalf("got %d errors, want minimum and multipleOf", len(el))
	}
}

func TestValidateString(t *testing.T) {
	sch := decodeSchema(t, `{"minLength": 2, "pattern": "^[a-z]+$"}`)
	if err := Validate("ab", sch); err != nil {
		t.Errorf("ab: %v", err)
	}
	// length is counted in runes, not bytes.
	sch = decodeSchema(t, `{"maxLength": 2}`)
	if err := Validate("héé", sch); err == nil {
		t.Error("3 runes must exceed maxLength 2")
	}
	if err := Validate("hé", sch); err != nil {
		t.Errorf("2 runes: %v", err)
	}
}

// missing required properties aggregate into a single error.
func TestValidateRequiredAggregates(t *testing.T) {
	sch := decodeSchema(t, `{"required": ["a", "b", "c"]}`)
	err := Validate(map[string]any{"b": nil}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	k, ok := el[0].Kind.(*kind.Required)
	if !ok {
		t.Fatalf("kind = %T", el[0].Kind)
	}
	if !reflect.DeepEqual(k.Missing, []string{"a", "c"}) {
		t.Errorf("Missing = %v", k.Missing)
	}
}

// a property matching properties or patternProperties is not
// additional: here only "b" is left over, producing exactly one error.
func TestValidateAdditionalPropertiesInteraction(t *testing.T) {
	sch := decodeSchema(t, `{
		"properties": {"a": {}},
		"patternProperties": {"^p": {}},
		"additionalProperties": false
	}`)
	err := Validate(map[string]any{"a": nil, "p1": nil, "b": nil}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	k, ok := el[0].Kind.(*kind.AdditionalProperties)
	if !ok {
		t.Fatalf("kind = %T", el[0].Kind)
	}
	if !reflect.DeepEqual(k.Properties, []string{"b"}) {
		t.Errorf("Properties = %v", k.Properties)
	}
}

func TestValidateAdditionalPropertiesSchema(t *testing.T) {
	sch := decodeSchema(t, `{
		"properties": {"a": {}},
		"additionalProperties": {"type": "string"}
	}`)
	err := Validate(map[string]any{"a": json.Number("1"), "b": json.Number("2")}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	if got := el[0].InstancePointer(); got != "/b" {
		t.Errorf("path = %q, want /b", got)
	}
}

func TestValidateDependencies(t *testing.T) {
	sch := decodeSchema(t, `{
		"dependencies": {
			"credit": ["billing"],
			"shipping": {"required": ["address"]}
		}
	}`)
	if err := Validate(map[string]any{"other": nil}, sch); err != nil {
		t.Errorf("untriggered dependency: %v", err)
	}
	err := Validate(map[string]any{"credit": nil, "shipping": nil}, sch)
	el := errorList(t, err)
	if len(el) != 2 {
		t.Fatalf("got %d errors, want 2", len(el))
	}
}

func TestValidatePropertyNamesAggregates(t *testing.T) {
	sch := decodeSchema(t, `{"propertyNames": {"maxLength": 2}}`)
	err := Validate(map[string]any{"ok": nil, "long": nil, "huge": nil}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	k, ok := el[0].Kind.(*kind.PropertyNames)
	if !ok {
		t.Fatalf("kind = %T", el[0].Kind)
	}
	if !reflect.DeepEqual(k.Properties, []string{"huge", "long"}) {
		t.Errorf("Properties = %v", k.Properties)
	}
}

func TestValidateArray(t *testing.T) {
	sch := decodeSchema(t, `{
		"items": [{"type": "string"}, {"type": "integer"}],
		"additionalItems": false
	}`)
	if err := Validate([]any{"a", json.Number("1")}, sch); err != nil {
		t.Errorf("tuple: %v", err)
	}
	err := Validate([]any{"a", json.Number("1"), true, false}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	if k, ok := el[0].Kind.(*kind.AdditionalItems); !ok || k.Count != 2 {
		t.Errorf("kind = %#v", el[0].Kind)
	}
}

func TestValidateUniqueItems(t *testing.T) {
	sch := decodeSchema(t, `{"uniqueItems": true}`)
	// 1 and 1.0 are the same number.
	err := Validate([]any{json.Number("1"), "x", json.Number("1.0")}, sch)
	el := errorList(t, err)
	k, ok := el[0].Kind.(*kind.UniqueItems)
	if !ok {
		t.Fatalf("kind = %T", el[0].Kind)
	}
	if k.Duplicates != [2]int{0, 2} {
		t.Errorf("Duplicates = %v", k.Duplicates)
	}
}

func TestValidateContains(t *testing.T) {
	sch := decodeSchema(t, `{"contains": {"type": "integer"}}`)
	if err := Validate([]any{"a", json.Number("1")}, sch); err != nil {
		t.Errorf("contains: %v", err)
	}
	err := Validate([]any{"a", "b"}, sch)
	el := errorList(t, err)
	if _, ok := el[0].Kind.(*kind.Contains); !ok {
		t.Errorf("kind = %T", el[0].Kind)
	}
}

func TestValidateEnumConst(t *testing.T) {
	sch := decodeSchema(t, `{"enum": [1, "two"]}`)
	if err := Validate(json.Number("1.0"), sch); err != nil {
		t.Errorf("1.0 must match enum value 1: %v", err)
	}
	if err := Validate("three", sch); err == nil {
		t.Error("three must fail enum")
	}

	sch = decodeSchema(t, `{"const": null}`)
	if err := Validate(nil, sch); err != nil {
		t.Errorf("null const: %v", err)
	}
	if err := Validate(false, sch); err == nil {
		t.Error("false must fail null const")
	}
}

// allOf surfaces the first failing branch's own errors and stops.
func TestValidateAllOfShortCircuits(t *testing.T) {
	sch := decodeSchema(t, `{"allOf": [
		{"type": "object"},
		{"required": ["a"]},
		{"required": ["b"]}
	]}`)
	err := Validate(map[string]any{}, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors, want 1", len(el))
	}
	k, ok := el[0].Kind.(*kind.Required)
	if !ok || !reflect.DeepEqual(k.Missing, []string{"a"}) {
		t.Errorf("kind = %#v", el[0].Kind)
	}
}

func TestValidateAnyOf(t *testing.T) {
	sch := decodeSchema(t, `{"anyOf": [{"type": "string"}, {"type": "integer"}]}`)
	if err := Validate(json.Number("1"), sch); err != nil {
		t.Errorf("anyOf: %v", err)
	}
	err := Validate(true, sch)
	el := errorList(t, err)
	if _, ok := el[0].Kind.(*kind.AnyOf); !ok {
		t.Errorf("kind = %T", el[0].Kind)
	}
}

func TestValidateOneOf(t *testing.T) {
	sch := decodeSchema(t, `{"oneOf": [
		{"type": "number"},
		{"type": "integer"},
		{"type": "string"}
	]}`)
	if err := Validate("x", sch); err != nil {
		t.Errorf("exactly one match: %v", err)
	}

	err := Validate(true, sch)
	el := errorList(t, err)
	if _, ok := el[0].Kind.(*kind.OneOfNone); !ok {
		t.Errorf("none matched: kind = %T", el[0].Kind)
	}

	// an integral number matches both number branches.
	err = Validate(json.Number("3"), sch)
	el = errorList(t, err)
	k, ok := el[0].Kind.(*kind.OneOfMany)
	if !ok || k.Matched != 2 {
		t.Errorf("many matched: kind = %#v", el[0].Kind)
	}
}

func TestValidateNot(t *testing.T) {
	sch := decodeSchema(t, `{"not": {"type": "string"}}`)
	if err := Validate(json.Number("1"), sch); err != nil {
		t.Errorf("not: %v", err)
	}
	err := Validate("x", sch)
	el := errorList(t, err)
	if _, ok := el[0].Kind.(*kind.Not); !ok {
		t.Errorf("kind = %T", el[0].Kind)
	}
}

func TestValidateErrorPaths(t *testing.T) {
	sch := decodeSchema(t, `{
		"properties": {
			"users": {
				"items": {"required": ["name"]}
			}
		}
	}`)
	doc := map[string]any{
		"users": []any{
			map[string]any{"name": "a"},
			map[string]any{},
		},
	}
	err := Validate(doc, sch)
	el := errorList(t, err)
	if len(el) != 1 {
		t.Fatalf("got %d errors", len(el))
	}
	if got := el[0].InstancePointer(); got != "/users/1" {
		t.Errorf("path = %q, want /users/1", got)
	}
}

func TestValidateRef(t *testing.T) {
	sch := decodeSchema(t, `{
		"definitions": {"positive": {"minimum": 1}},
		"properties": {"count": {"$ref": "#/definitions/positive"}}
	}`)
	if err := Validate(map[string]any{"count": json.Number("5")}, sch); err != nil {
		t.Errorf("ref: %v", err)
	}
	err := Validate(map[string]any{"count": json.Number("0")}, sch)
	el := errorList(t, err)
	// indirection is transparent to the reported path.
	if got := el[0].InstancePointer(); got != "/count" {
		t.Errorf("path = %q, want /count", got)
	}
}

// a root that references itself accepts everything its keywords
// accept: the self-reference alone must not produce errors or loop.
func TestValidateSelfRef(t *testing.T) {
	sch := decodeSchema(t, `{"$ref": "#"}`)
	if err := Validate(map[string]any{"a": json.Number("1")}, sch); err != nil {
		t.Errorf("self-ref: %v", err)
	}
}

func TestValidateRecursiveRef(t *testing.T) {
	sch := decodeSchema(t, `{
		"properties": {
			"value": {"type": "string"},
			"next": {"$ref": "#"}
		}
	}`)
	doc := map[string]any{
		"value": "a",
		"next": map[string]any{
			"value": json.Number("1"),
		},
	}
	err := Validate(doc, sch)
	el := errorList(t, err)
	if got := el[0].InstancePointer(); got != "/next/value" {
		t.Errorf("path = %q, want /next/value", got)
	}
}

func TestValidateMutualRefCycle(t *testing.T) {
	sch := decodeSchema(t, `{
		"definitions": {
			"a": {"$ref": "#/definitions/b"},
			"b": {"$ref": "#/definitions/a"}
		},
		"$ref": "#/definitions/a"
	}`)
	// must terminate; over-depth refs pass.
	if err := Validate("anything", sch); err != nil {
		t.Errorf("cycle: %v", err)
	}
}

func TestValidateUnresolvableRef(t *testing.T) {
	sch := decodeSchema(t, `{"properties": {"a": {"$ref": "#/definitions/missing"}}}`)
	err := Validate(map[string]any{"a": nil}, sch)
	el := errorList(t, err)
	k, ok := el[0].Kind.(*kind.UnresolvableReference)
	if !ok {
		t.Fatalf("kind = %T", el[0].Kind)
	}
	if k.Ref != "#/definitions/missing" {
		t.Errorf("Ref = %q", k.Ref)
	}
	if got := el[0].InstancePointer(); got != "/a" {
		t.Errorf("path = %q", got)
	}
}

func TestValidateCrossDocumentRef(t *testing.T) {
	other := decodeSchema(t, `{
		"$id": "http://x.test/types.json",
		"definitions": {"name": {"type": "string"}}
	}`)
	root := decodeSchema(t, `{
		"$id": "http://x.test/root.json",
		"properties": {"name": {"$ref": "types.json#/definitions/name"}}
	}`)
	vd := Validator{Pool: Pool{"http://x.test/types.json": other}}
	if err := vd.Validate(map[string]any{"name": "a"}, root); err != nil {
		t.Errorf("cross-document: %v", err)
	}
	if err := vd.Validate(map[string]any{"name": json.Number("1")}, root); err == nil {
		t.Error("cross-document failure not reported")
	}
}

func TestValidateAt(t *testing.T) {
	sch := decodeSchema(t, `{
		"definitions": {"positive": {"minimum": 1}}
	}`)
	if err := ValidateAt(json.Number("5"), sch, "#/definitions/positive"); err != nil {
		t.Errorf("validateAt: %v", err)
	}
	if err := ValidateAt(json.Number("0"), sch, "#/definitions/positive"); err == nil {
		t.Error("validateAt must fail for 0")
	}
	err := ValidateAt(nil, sch, "#/definitions/missing")
	el := errorList(t, err)
	if _, ok := el[0].Kind.(*kind.UnresolvableReference); !ok {
		t.Errorf("kind = %T", el[0].Kind)
	}
}

func TestValidateFormat(t *testing.T) {
	sch := decodeSchema(t, `{"format": "email"}`)
	// annotation by default.
	if err := Validate("not an email", sch); err != nil {
		t.Errorf("format must not assert by default: %v", err)
	}
	vd := Validator{AssertFormat: true}
	if err := vd.Validate("not an email", sch); err == nil {
		t.Error("asserted format must fail")
	}
	if err := vd.Validate("a@example.com", sch); err != nil {
		t.Errorf("valid email: %v", err)
	}
	// unknown formats always pass.
	sch = decodeSchema(t, `{"format": "no-such-format"}`)
	if err := vd.Validate("anything", sch); err != nil {
		t.Errorf("unknown format: %v", err)
	}
}

// validating the same value twice yields identical error lists.
func TestValidateIdempotent(t *testing.T) {
	sch := decodeSchema(t, `{
		"required": ["a", "b"],
		"properties": {"c": {"type": "string"}},
		"patternProperties": {"^x": {"type": "integer"}},
		"additionalProperties": false
	}`)
	doc := map[string]any{
		"c":  json.Number("1"),
		"x1": "s",
		"x2": "t",
		"z1": nil,
		"z2": nil,
	}
	first := errorList(t, Validate(doc, sch))
	for i := 0; i < 5; i++ {
		again := errorList(t, Validate(doc, sch))
		if len(again) != len(first) {
			t.Fatalf("run %d: %d errors, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].Error() != first[j].Error() {
				t.Fatalf("run %d: error %d = %q, want %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestValidateAgainstMetaschema(t *testing.T) {
	pool := DefaultPool()
	meta := pool["http://json-schema.org/draft-06/schema"]

	valid := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	}
	if err := Validate(valid, meta); err != nil {
		t.Errorf("valid schema rejected by metaschema: %v", err)
	}

	invalid := map[string]any{"type": json.Number("1")}
	if err := Validate(invalid, meta); err == nil {
		t.Error("invalid schema accepted by metaschema")
	}
}
