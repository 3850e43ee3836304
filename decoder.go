package jsonschema

import (
	"bytes"
	"math/big"
)

// A Decoder decodes json values into Schema trees.
type Decoder struct {
	regexp RegexpEngine
}

// NewDecoder returns a Decoder using the ECMA regexp engine.
func NewDecoder() *Decoder {
	return &Decoder{regexp: ECMARegexp}
}

// UseRegexpEngine changes the engine used to compile pattern and
// patternProperties keywords.
func (d *Decoder) UseRegexpEngine(engine RegexpEngine) {
	d.regexp = engine
}

// Decode decodes the json value v into a Schema. v must be a boolean
// or an object; nested schemas are decoded recursively. Unrecognized
// keywords are ignored but remain reachable through Schema.Source.
func (d *Decoder) Decode(v any) (*Schema, error) {
	switch v := v.(type) {
	case bool:
		return BooleanSchema(v), nil
	case map[string]any:
		return d.decodeObject(v)
	default:
		t, err := jsonType(v)
		if err != nil {
			t = "non-json value"
		}
		return nil, decodeError("", "schema must be boolean or object, got %s", t)
	}
}

// Decode decodes v with the default decoder.
func Decode(v any) (*Schema, error) {
	return NewDecoder().Decode(v)
}

// DecodeJSON parses data as json and decodes it into a Schema.
func DecodeJSON(data []byte) (*Schema, error) {
	doc, err := UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError("", "invalid json: %v", err)
	}
	return Decode(doc)
}

func (d *Decoder) decodeObject(m map[string]any) (*Schema, error) {
	s := newSchema()
	s.Source = m
	var err error

	if s.ID, err = strKeyword(m, "$id"); err != nil {
		return nil, err
	}
	if s.ID == "" {
		if s.ID, err = strKeyword(m, "id"); err != nil {
			return nil, err
		}
	}
	if s.Ref, err = strKeyword(m, "$ref"); err != nil {
		return nil, err
	}
	if s.Title, err = strKeyword(m, "title"); err != nil {
		return nil, err
	}
	if s.Description, err = strKeyword(m, "description"); err != nil {
		return nil, err
	}
	if s.Format, err = strKeyword(m, "format"); err != nil {
		return nil, err
	}
	s.Default = m["default"]
	if v, ok := m["examples"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, decodeError("examples", "must be an array")
		}
		s.Examples = arr
	}

	if s.MultipleOf, err = ratKeyword(m, "multipleOf"); err != nil {
		return nil, err
	}
	if s.Maximum, err = ratKeyword(m, "maximum"); err != nil {
		return nil, err
	}
	if s.Minimum, err = ratKeyword(m, "minimum"); err != nil {
		return nil, err
	}
	if s.ExclusiveMaximum, err = boundaryKeyword(m, "exclusiveMaximum"); err != nil {
		return nil, err
	}
	if s.ExclusiveMinimum, err = boundaryKeyword(m, "exclusiveMinimum"); err != nil {
		return nil, err
	}

	if s.MaxLength, err = intKeyword(m, "maxLength"); err != nil {
		return nil, err
	}
	if s.MinLength, err = intKeyword(m, "minLength"); err != nil {
		return nil, err
	}
	if v, ok := m["pattern"]; ok {
		expr, ok := v.(string)
		if !ok {
			return nil, decodeError("pattern", "must be a string")
		}
		if s.Pattern, err = d.regexp(expr); err != nil {
			return nil, decodeError("pattern", "invalid regex %q: %v", expr, err)
		}
	}

	if v, ok := m["items"]; ok {
		switch v := v.(type) {
		case []any:
			schemas := make([]*Schema, len(v))
			for i, item := range v {
				if schemas[i], err = d.decodeNested("items", item); err != nil {
					return nil, err
				}
			}
			s.Items = schemas
		default:
			sch, err := d.decodeNested("items", v)
			if err != nil {
				return nil, err
			}
			s.Items = sch
		}
	}
	if v, ok := m["additionalItems"]; ok {
		if s.AdditionalItems, err = d.decodeBoolOrSchema("additionalItems", v); err != nil {
			return nil, err
		}
	}
	if s.MaxItems, err = intKeyword(m, "maxItems"); err != nil {
		return nil, err
	}
	if s.MinItems, err = intKeyword(m, "minItems"); err != nil {
		return nil, err
	}
	if v, ok := m["uniqueItems"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, decodeError("uniqueItems", "must be a boolean")
		}
		s.UniqueItems = b
	}
	if v, ok := m["contains"]; ok {
		if s.Contains, err = d.decodeNested("contains", v); err != nil {
			return nil, err
		}
	}

	if s.MaxProperties, err = intKeyword(m, "maxProperties"); err != nil {
		return nil, err
	}
	if s.MinProperties, err = intKeyword(m, "minProperties"); err != nil {
		return nil, err
	}
	if v, ok := m["required"]; ok {
		if s.Required, err = strArrayKeyword("required", v); err != nil {
			return nil, err
		}
	}
	if s.Properties, err = d.schemataKeyword(m, "properties"); err != nil {
		return nil, err
	}
	if v, ok := m["patternProperties"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, decodeError("patternProperties", "must be an object")
		}
		for _, expr := range sortedKeys(obj) {
			re, err := d.regexp(expr)
			if err != nil {
				return nil, decodeError("patternProperties", "invalid regex %q: %v", expr, err)
			}
			sch, err := d.decodeNested("patternProperties", obj[expr])
			if err != nil {
				return nil, err
			}
			s.PatternProperties = append(s.PatternProperties, PatternSchema{re, sch})
		}
	}
	if v, ok := m["additionalProperties"]; ok {
		if s.AdditionalProperties, err = d.decodeBoolOrSchema("additionalProperties", v); err != nil {
			return nil, err
		}
	}
	if v, ok := m["dependencies"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, decodeError("dependencies", "must be an object")
		}
		for _, prop := range sortedKeys(obj) {
			switch dv := obj[prop].(type) {
			case []any:
				names, err := strArrayKeyword("dependencies", dv)
				if err != nil {
					return nil, err
				}
				s.Dependencies = append(s.Dependencies, Dependency{Prop: prop, Required: names})
			default:
				sch, err := d.decodeNested("dependencies", dv)
				if err != nil {
					return nil, err
				}
				s.Dependencies = append(s.Dependencies, Dependency{Prop: prop, Schema: sch})
			}
		}
	}
	if v, ok := m["propertyNames"]; ok {
		if s.PropertyNames, err = d.decodeNested("propertyNames", v); err != nil {
			return nil, err
		}
	}

	if v, ok := m["enum"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, decodeError("enum", "must be an array")
		}
		s.Enum = arr
	}
	if v, ok := m["const"]; ok {
		s.Const = []any{v}
	}
	if v, ok := m["type"]; ok {
		if s.Types, err = typeKeyword(v); err != nil {
			return nil, err
		}
	}
	if s.AllOf, err = d.schemaListKeyword(m, "allOf"); err != nil {
		return nil, err
	}
	if s.AnyOf, err = d.schemaListKeyword(m, "anyOf"); err != nil {
		return nil, err
	}
	if s.OneOf, err = d.schemaListKeyword(m, "oneOf"); err != nil {
		return nil, err
	}
	if v, ok := m["not"]; ok {
		if s.Not, err = d.decodeNested("not", v); err != nil {
			return nil, err
		}
	}
	if s.Definitions, err = d.schemataKeyword(m, "definitions"); err != nil {
		return nil, err
	}

	return s, nil
}

func (d *Decoder) decodeNested(keyword string, v any) (*Schema, error) {
	switch v := v.(type) {
	case bool:
		return BooleanSchema(v), nil
	case map[string]any:
		return d.decodeObject(v)
	default:
		return nil, decodeError(keyword, "subschema must be boolean or object")
	}
}

func (d *Decoder) decodeBoolOrSchema(keyword string, v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case map[string]any:
		return d.decodeObject(v)
	default:
		return nil, decodeError(keyword, "must be boolean or object")
	}
}

func (d *Decoder) schemataKeyword(m map[string]any, keyword string) (Schemata, error) {
	v, ok := m[keyword]
	if !ok {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeError(keyword, "must be an object")
	}
	// property order is normalized to name order, so that decoding is
	// deterministic regardless of map iteration.
	schemata := make(Schemata, 0, len(obj))
	for _, name := range sortedKeys(obj) {
		sch, err := d.decodeNested(keyword, obj[name])
		if err != nil {
			return nil, err
		}
		schemata = append(schemata, NamedSchema{name, sch})
	}
	return schemata, nil
}

func (d *Decoder) schemaListKeyword(m map[string]any, keyword string) ([]*Schema, error) {
	v, ok := m[keyword]
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, decodeError(keyword, "must be an array")
	}
	schemas := make([]*Schema, len(arr))
	for i, item := range arr {
		var err error
		if schemas[i], err = d.decodeNested(keyword, item); err != nil {
			return nil, err
		}
	}
	return schemas, nil
}

func strKeyword(m map[string]any, keyword string) (string, error) {
	v, ok := m[keyword]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", decodeError(keyword, "must be a string")
	}
	return s, nil
}

func strArrayKeyword(keyword string, v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, decodeError(keyword, "must be an array of strings")
	}
	out := make([]string, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, decodeError(keyword, "must be an array of strings")
		}
		out[i] = s
	}
	return out, nil
}

func ratKeyword(m map[string]any, keyword string) (*big.Rat, error) {
	v, ok := m[keyword]
	if !ok {
		return nil, nil
	}
	num, ok := rat(v)
	if !ok {
		return nil, decodeError(keyword, "must be a number")
	}
	return num, nil
}

func intKeyword(m map[string]any, keyword string) (int, error) {
	v, ok := m[keyword]
	if !ok {
		return -1, nil
	}
	num, ok := rat(v)
	if !ok || !num.IsInt() {
		return -1, decodeError(keyword, "must be an integer")
	}
	return int(num.Num().Int64()), nil
}

// boundaryKeyword decodes the dual-mode exclusiveMaximum/Minimum:
// boolean in draft-04, number in draft-06.
func boundaryKeyword(m map[string]any, keyword string) (*ExclusiveBoundary, error) {
	v, ok := m[keyword]
	if !ok {
		return nil, nil
	}
	if b, ok := v.(bool); ok {
		return boolBoundary(b), nil
	}
	if num, ok := rat(v); ok {
		return numBoundary(num), nil
	}
	return nil, decodeError(keyword, "must be boolean or number")
}

func typeKeyword(v any) (Type, error) {
	switch v := v.(type) {
	case string:
		if !validTypeName(v) {
			return AnyType(), decodeError("type", "unknown type %q", v)
		}
		return SingleType(v), nil
	case []any:
		names := make([]string, len(v))
		for i, item := range v {
			name, ok := item.(string)
			if !ok || !validTypeName(name) {
				return AnyType(), decodeError("type", "must be a type name or array of type names")
			}
			names[i] = name
		}
		return UnionType(names...), nil
	default:
		return AnyType(), decodeError("type", "must be a type name or array of type names")
	}
}
