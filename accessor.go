package jsonschema

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"
)

// DefaultFor synthesizes a value for sch: an explicit default keyword
// wins, otherwise the value is driven by the schema's type. Objects
// get their required properties filled in recursively, arrays are
// empty, numbers are zero, booleans false, strings empty. Schemas
// with no usable type yield null.
func DefaultFor(sch *Schema) any {
	ac := accessor{pool: NewPool(), maxDepth: DefaultMaxRefDepth}
	ns := CollectIDs(sch, ac.pool)
	ac.pool.Add(ns, sch)
	return ac.defaultFor(ns, sch, sch, 0)
}

// GetValue returns the value in doc at the given json-pointer path.
// When the path does not exist in doc, the governing subschema's
// default is synthesized instead.
func GetValue(sch *Schema, ptr string, doc any) any {
	if v, ok := dig(doc, pointerPath(ptr)); ok {
		return v
	}
	if sub, ok := SchemaAt(sch, ptr); ok {
		return DefaultFor(sub)
	}
	return nil
}

// SetValue validates the new leaf value against the subschema
// governing the pointer path, then commits it into doc, returning the
// updated document. The input document is not modified.
func SetValue(sch *Schema, ptr string, leaf, doc any) (any, error) {
	sub, ok := SchemaAt(sch, ptr)
	if !ok {
		return nil, fmt.Errorf("no schema at %q", ptr)
	}
	if err := Validate(leaf, sub); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	op, err := json.Marshal(map[string]any{"op": "add", "path": ptr, "value": leaf})
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch([]byte("[" + string(op) + "]"))
	if err != nil {
		return nil, err
	}
	out, err := patch.Apply(raw)
	if err != nil {
		return nil, err
	}
	return UnmarshalJSON(bytes.NewReader(out))
}

// SchemaAt walks the schema model along a json-pointer path into the
// instance, dereferencing $refs on the way, and returns the subschema
// that governs values at that location.
func SchemaAt(sch *Schema, ptr string) (*Schema, bool) {
	ac := accessor{pool: NewPool(), maxDepth: DefaultMaxRefDepth}
	ns := CollectIDs(sch, ac.pool)
	ac.pool.Add(ns, sch)

	root := sch
	for _, token := range pointerPath(ptr) {
		var ok bool
		ns, root, sch, ok = ac.deref(ns, root, sch, 0)
		if !ok {
			return nil, false
		}
		sch, ok = childSchema(sch, token)
		if !ok {
			return nil, false
		}
	}
	_, _, sch, ok := ac.deref(ns, root, sch, 0)
	return sch, ok
}

// pointerPath decomposes an instance pointer into unescaped tokens.
func pointerPath(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "#")
	if ptr == "" || ptr == "/" {
		return nil
	}
	var path []string
	for _, token := range strings.Split(ptr, "/")[1:] {
		path = append(path, unescapeToken(token))
	}
	return path
}

func childSchema(sch *Schema, token string) (*Schema, bool) {
	if prop, ok := sch.Properties.Get(token); ok {
		return prop, true
	}
	for _, ps := range sch.PatternProperties {
		if ps.Pattern.MatchString(token) {
			return ps.Schema, true
		}
	}
	switch items := sch.Items.(type) {
	case *Schema:
		if _, err := strconv.Atoi(token); err == nil {
			return items, true
		}
	case []*Schema:
		i, err := strconv.Atoi(token)
		if err == nil {
			if i < len(items) {
				return items[i], true
			}
			if ai, ok := sch.AdditionalItems.(*Schema); ok {
				return ai, true
			}
		}
	}
	if ap, ok := sch.AdditionalProperties.(*Schema); ok {
		return ap, true
	}
	return nil, false
}

type accessor struct {
	pool     Pool
	maxDepth int
}

// deref chases a schema's $ref until it lands on a concrete schema,
// also tracking which root document it landed in.
func (ac accessor) deref(ns string, root, sch *Schema, depth int) (string, *Schema, *Schema, bool) {
	if sch == nil {
		return "", nil, nil, false
	}
	if sch.Ref == "" || depth >= ac.maxDepth {
		return ns, root, sch, true
	}
	r := resolver{pool: ac.pool, maxDepth: ac.maxDepth}
	ns2, target, ok := r.resolve(rootNamespace(ns, root), root, sch.Ref, 0)
	if !ok {
		return "", nil, nil, false
	}
	newRoot := root
	if pooled, ok := ac.pool[ns2]; ok {
		newRoot = pooled
	}
	return ac.deref(ns2, newRoot, target, depth+1)
}

func (ac accessor) defaultFor(ns string, root, sch *Schema, depth int) any {
	ns, root, sch, ok := ac.deref(ns, root, sch, 0)
	if !ok || depth >= ac.maxDepth {
		return nil
	}
	if sch.Default != nil {
		return sch.Default
	}
	if sch.Always != nil {
		return nil
	}

	kinds := sch.Types.Kinds()
	if len(kinds) == 0 {
		return nil
	}
	switch kinds[0] {
	case "object":
		obj := map[string]any{}
		for _, pname := range sch.Required {
			obj[pname] = nil
			if prop, ok := sch.Properties.Get(pname); ok {
				obj[pname] = ac.defaultFor(ns, root, prop, depth+1)
			}
		}
		return obj
	case "array":
		return []any{}
	case "integer", "number":
		return json.Number("0")
	case "boolean":
		return false
	case "string":
		return ""
	default:
		return nil
	}
}
