package jsonschema

import (
	"math/big"
	"reflect"
	"testing"
)

func ratOf(t *testing.T, s string) *big.Rat {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("bad rat %q", s)
	}
	return r
}

func TestParseJSONPointer(t *testing.T) {
	tests := []struct {
		ref, ns   string
		isPointer bool
		namespace string
		path      []string
	}{
		{"#/definitions/node", "", true, "", []string{"definitions", "node"}},
		{"#/a~1b/c~0d", "", true, "", []string{"a/b", "c~d"}},
		{"#/tokens/a%25b", "", true, "", []string{"tokens", "a%b"}},
		{"#name", "http://x.test/s.json", false, "http://x.test/s.json", []string{"name"}},
		{"#", "http://x.test/s.json", false, "http://x.test/s.json", nil},
		{"other.json#/a", "http://x.test/dir/s.json", true, "http://x.test/dir/other.json", []string{"a"}},
		{"other.json", "http://x.test/dir/s.json", false, "http://x.test/dir/other.json", nil},
		{"http://y.test/t.json#/a", "http://x.test/s.json", true, "http://y.test/t.json", []string{"a"}},
		{"/abs/t.json", "http://x.test/s.json", false, "/abs/t.json", nil},
		{"", "http://x.test/s.json", false, "http://x.test/s.json", nil},
	}
	for _, test := range tests {
		isPointer, ns, path := ParseJSONPointer(test.ref, test.ns)
		if isPointer != test.isPointer || ns != test.namespace || !reflect.DeepEqual(path, test.path) {
			t.Errorf("ParseJSONPointer(%q, %q) = (%v, %q, %v), want (%v, %q, %v)",
				test.ref, test.ns, isPointer, ns, path, test.isPointer, test.namespace, test.path)
		}
	}
}

func TestResolvePointer(t *testing.T) {
	sch, err := DecodeJSON([]byte(`{
		"definitions": {
			"positive": {"type": "integer", "minimum": 1}
		},
		"properties": {
			"count": {"$ref": "#/definitions/positive"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	_, target, ok := Resolve("", NewPool(), sch, "#/definitions/positive")
	if !ok {
		t.Fatal("resolve failed")
	}
	if target.Minimum == nil || target.Minimum.Cmp(ratOf(t, "1")) != 0 {
		t.Error("resolved wrong node")
	}
}

func TestResolveChain(t *testing.T) {
	sch, err := DecodeJSON([]byte(`{
		"definitions": {
			"a": {"$ref": "#/definitions/b"},
			"b": {"$ref": "#/definitions/c"},
			"c": {"type": "string"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	_, target, ok := Resolve("", NewPool(), sch, "#/definitions/a")
	if !ok {
		t.Fatal("resolve failed")
	}
	if got := target.Types.Kinds(); len(got) != 1 || got[0] != "string" {
		t.Errorf("chain resolved to %v, want string schema", got)
	}
}

// two schemas referencing each other must terminate at the depth
// bound rather than recurse forever.
func TestResolveCycle(t *testing.T) {
	sch, err := DecodeJSON([]byte(`{
		"definitions": {
			"a": {"$ref": "#/definitions/b"},
			"b": {"$ref": "#/definitions/a"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	_, target, ok := Resolve("", NewPool(), sch, "#/definitions/a")
	if !ok {
		t.Fatal("cycle resolution must not fail hard")
	}
	if target.Ref == "" {
		t.Error("cycle must bottom out on a still-referencing node")
	}
}

func TestResolveUnresolvable(t *testing.T) {
	sch, err := DecodeJSON([]byte(`{"properties": {"a": {"$ref": "#/definitions/missing"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := Resolve("", NewPool(), sch, "#/definitions/missing"); ok {
		t.Error("missing target must report ok == false")
	}
}

func TestResolveCrossNamespace(t *testing.T) {
	other, err := DecodeJSON([]byte(`{
		"$id": "http://x.test/other.json",
		"definitions": {"name": {"type": "string", "minLength": 1}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	root, err := DecodeJSON([]byte(`{
		"$id": "http://x.test/root.json",
		"properties": {"name": {"$ref": "other.json#/definitions/name"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	pool := NewPool()
	pool.Add("http://x.test/other.json", other)

	ns, target, ok := Resolve("", pool, root, "other.json#/definitions/name")
	if !ok {
		t.Fatal("cross-namespace resolve failed")
	}
	if ns != "http://x.test/other.json" {
		t.Errorf("namespace = %q", ns)
	}
	if target.MinLength != 1 {
		t.Error("resolved wrong node")
	}
}

func TestCollectIDs(t *testing.T) {
	sch, err := DecodeJSON([]byte(`{
		"$id": "http://x.test/root.json",
		"definitions": {
			"address": {
				"$id": "http://x.test/address.json",
				"type": "object"
			},
			"anchored": {"$id": "#frag", "type": "string"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	pool := NewPool()
	ns := CollectIDs(sch, pool)
	if ns != "http://x.test/root.json" {
		t.Errorf("namespace = %q", ns)
	}
	if _, ok := pool["http://x.test/address.json"]; !ok {
		t.Error("nested $id not collected")
	}
	if _, ok := pool["http://x.test/root.json#frag"]; !ok {
		t.Error("anchor $id not collected")
	}
}

func TestDefaultPool(t *testing.T) {
	pool := DefaultPool()
	for _, ns := range []string{
		"http://json-schema.org/draft-04/schema",
		"http://json-schema.org/draft-06/schema",
	} {
		sch, ok := pool[ns]
		if !ok {
			t.Fatalf("missing %s", ns)
		}
		if _, ok := sch.Definitions.Get("simpleTypes"); !ok {
			t.Errorf("%s: missing simpleTypes definition", ns)
		}
	}

	// mutating the returned pool must not leak into later calls.
	pool.Add("http://json-schema.org/draft-04/schema", newSchema())
	fresh := DefaultPool()
	if sch := fresh["http://json-schema.org/draft-04/schema"]; sch.Source == nil {
		t.Error("default pool must be immutable across calls")
	}
}
