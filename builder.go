package jsonschema

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/goccy/go-json"
)

// A Builder constructs schemas programmatically, as a convenience
// over hand-writing schema json. Every With method returns a new
// Builder and leaves the receiver untouched; errors accumulate and
// the first one surfaces from ToSchema. The builder enforces no
// validation semantics of its own.
type Builder struct {
	sch    *Schema
	isBool bool
	isObj  bool
	errs   []string
}

// NewBuilder returns an empty object-schema builder.
func NewBuilder() *Builder {
	return &Builder{sch: newSchema()}
}

func (b *Builder) clone() *Builder {
	sch := *b.sch
	return &Builder{
		sch:    &sch,
		isBool: b.isBool,
		isObj:  b.isObj,
		errs:   append([]string(nil), b.errs...),
	}
}

func (b *Builder) set(f func(s *Schema)) *Builder {
	nb := b.clone()
	nb.isObj = true
	f(nb.sch)
	return nb
}

func (b *Builder) fail(format string, a ...any) *Builder {
	nb := b.clone()
	nb.errs = append(nb.errs, fmt.Sprintf(format, a...))
	return nb
}

// ToSchema finishes the builder. The first accumulated error wins.
func (b *Builder) ToSchema() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, errors.New(b.errs[0])
	}
	if b.isBool && b.isObj {
		return nil, errors.New("both boolean and object schema supplied")
	}
	sch := *b.sch
	sch.Source = buildSource(&sch)
	return &sch, nil
}

// toSchema bottoms out a sub-builder, tagging its error with the
// keyword that embeds it.
func (b *Builder) toSchema(keyword string, sub *Builder) (*Schema, *Builder) {
	sch, err := sub.ToSchema()
	if err != nil {
		return nil, b.fail("%s: %v", keyword, err)
	}
	return sch, nil
}

// --

// WithAlways turns the builder into the boolean form schema.
func (b *Builder) WithAlways(always bool) *Builder {
	nb := b.clone()
	nb.isBool = true
	nb.sch.Always = &always
	return nb
}

func (b *Builder) WithID(id string) *Builder   { return b.set(func(s *Schema) { s.ID = id }) }
func (b *Builder) WithRef(ref string) *Builder { return b.set(func(s *Schema) { s.Ref = ref }) }
func (b *Builder) WithTitle(title string) *Builder {
	return b.set(func(s *Schema) { s.Title = title })
}
func (b *Builder) WithDescription(desc string) *Builder {
	return b.set(func(s *Schema) { s.Description = desc })
}
func (b *Builder) WithDefault(v any) *Builder { return b.set(func(s *Schema) { s.Default = v }) }
func (b *Builder) WithFormat(format string) *Builder {
	return b.set(func(s *Schema) { s.Format = format })
}

// --

func (b *Builder) WithType(t string) *Builder {
	if !validTypeName(t) {
		return b.fail("unknown type %q", t)
	}
	return b.set(func(s *Schema) { s.Types = SingleType(t) })
}

func (b *Builder) WithNullableType(t string) *Builder {
	if t == "null" {
		return b.fail("nullable null not allowed")
	}
	if !validTypeName(t) {
		return b.fail("unknown type %q", t)
	}
	return b.set(func(s *Schema) { s.Types = NullableType(t) })
}

func (b *Builder) WithUnionType(ts ...string) *Builder {
	for _, t := range ts {
		if !validTypeName(t) {
			return b.fail("unknown type %q", t)
		}
	}
	return b.set(func(s *Schema) { s.Types = UnionType(ts...) })
}

func (b *Builder) WithEnum(values ...any) *Builder {
	return b.set(func(s *Schema) { s.Enum = values })
}

func (b *Builder) WithConst(v any) *Builder {
	return b.set(func(s *Schema) { s.Const = []any{v} })
}

// --

func (b *Builder) WithMultipleOf(n float64) *Builder {
	return b.set(func(s *Schema) { s.MultipleOf = new(big.Rat).SetFloat64(n) })
}
func (b *Builder) WithMaximum(n float64) *Builder {
	return b.set(func(s *Schema) { s.Maximum = new(big.Rat).SetFloat64(n) })
}
func (b *Builder) WithMinimum(n float64) *Builder {
	return b.set(func(s *Schema) { s.Minimum = new(big.Rat).SetFloat64(n) })
}

// WithExclusiveMaximum sets the draft-06 numeric form.
func (b *Builder) WithExclusiveMaximum(n float64) *Builder {
	return b.set(func(s *Schema) { s.ExclusiveMaximum = numBoundary(new(big.Rat).SetFloat64(n)) })
}

// WithExclusiveMaximumFlag sets the draft-04 boolean form, which
// makes WithMaximum strict.
func (b *Builder) WithExclusiveMaximumFlag(exclusive bool) *Builder {
	return b.set(func(s *Schema) { s.ExclusiveMaximum = boolBoundary(exclusive) })
}

func (b *Builder) WithExclusiveMinimum(n float64) *Builder {
	return b.set(func(s *Schema) { s.ExclusiveMinimum = numBoundary(new(big.Rat).SetFloat64(n)) })
}

func (b *Builder) WithExclusiveMinimumFlag(exclusive bool) *Builder {
	return b.set(func(s *Schema) { s.ExclusiveMinimum = boolBoundary(exclusive) })
}

// --

func (b *Builder) WithMaxLength(n int) *Builder {
	return b.set(func(s *Schema) { s.MaxLength = n })
}
func (b *Builder) WithMinLength(n int) *Builder {
	return b.set(func(s *Schema) { s.MinLength = n })
}

func (b *Builder) WithPattern(expr string) *Builder {
	re, err := ECMARegexp(expr)
	if err != nil {
		return b.fail("pattern: invalid regex %q: %v", expr, err)
	}
	return b.set(func(s *Schema) { s.Pattern = re })
}

// --

// WithItem sets a single schema applying to every element.
func (b *Builder) WithItem(item *Builder) *Builder {
	sch, fb := b.toSchema("items", item)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.Items = sch })
}

// WithItems sets positional tuple validation.
func (b *Builder) WithItems(items ...*Builder) *Builder {
	schemas := make([]*Schema, len(items))
	for i, item := range items {
		sch, fb := b.toSchema("items", item)
		if fb != nil {
			return fb
		}
		schemas[i] = sch
	}
	return b.set(func(s *Schema) { s.Items = schemas })
}

func (b *Builder) WithAdditionalItems(item *Builder) *Builder {
	sch, fb := b.toSchema("additionalItems", item)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.AdditionalItems = sch })
}

func (b *Builder) WithAdditionalItemsAllowed(allowed bool) *Builder {
	return b.set(func(s *Schema) { s.AdditionalItems = allowed })
}

func (b *Builder) WithMaxItems(n int) *Builder { return b.set(func(s *Schema) { s.MaxItems = n }) }
func (b *Builder) WithMinItems(n int) *Builder { return b.set(func(s *Schema) { s.MinItems = n }) }
func (b *Builder) WithUniqueItems(unique bool) *Builder {
	return b.set(func(s *Schema) { s.UniqueItems = unique })
}

func (b *Builder) WithContains(sub *Builder) *Builder {
	sch, fb := b.toSchema("contains", sub)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.Contains = sch })
}

// --

func (b *Builder) WithMaxProperties(n int) *Builder {
	return b.set(func(s *Schema) { s.MaxProperties = n })
}
func (b *Builder) WithMinProperties(n int) *Builder {
	return b.set(func(s *Schema) { s.MinProperties = n })
}

func (b *Builder) WithRequired(names ...string) *Builder {
	return b.set(func(s *Schema) { s.Required = names })
}

// WithProperty registers a property schema, keeping insertion order.
func (b *Builder) WithProperty(name string, prop *Builder) *Builder {
	sch, fb := b.toSchema("properties", prop)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.Properties = s.Properties.Set(name, sch) })
}

func (b *Builder) WithPatternProperty(expr string, prop *Builder) *Builder {
	re, err := ECMARegexp(expr)
	if err != nil {
		return b.fail("patternProperties: invalid regex %q: %v", expr, err)
	}
	sch, fb := b.toSchema("patternProperties", prop)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) {
		s.PatternProperties = append(append([]PatternSchema(nil), s.PatternProperties...), PatternSchema{re, sch})
	})
}

func (b *Builder) WithAdditionalProperties(prop *Builder) *Builder {
	sch, fb := b.toSchema("additionalProperties", prop)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.AdditionalProperties = sch })
}

func (b *Builder) WithAdditionalPropertiesAllowed(allowed bool) *Builder {
	return b.set(func(s *Schema) { s.AdditionalProperties = allowed })
}

// WithSchemaDependency validates the whole object against dep when
// name is present.
func (b *Builder) WithSchemaDependency(name string, dep *Builder) *Builder {
	sch, fb := b.toSchema("dependencies", dep)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) {
		s.Dependencies = append(append([]Dependency(nil), s.Dependencies...), Dependency{Prop: name, Schema: sch})
	})
}

// WithPropertyDependency requires the given names when name is present.
func (b *Builder) WithPropertyDependency(name string, required ...string) *Builder {
	return b.set(func(s *Schema) {
		s.Dependencies = append(append([]Dependency(nil), s.Dependencies...), Dependency{Prop: name, Required: required})
	})
}

func (b *Builder) WithPropertyNames(sub *Builder) *Builder {
	sch, fb := b.toSchema("propertyNames", sub)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.PropertyNames = sch })
}

// --

func (b *Builder) withSchemaList(keyword string, subs []*Builder, assign func(s *Schema, schemas []*Schema)) *Builder {
	schemas := make([]*Schema, len(subs))
	for i, sub := range subs {
		sch, fb := b.toSchema(keyword, sub)
		if fb != nil {
			return fb
		}
		schemas[i] = sch
	}
	return b.set(func(s *Schema) { assign(s, schemas) })
}

func (b *Builder) WithAllOf(subs ...*Builder) *Builder {
	return b.withSchemaList("allOf", subs, func(s *Schema, schemas []*Schema) { s.AllOf = schemas })
}

func (b *Builder) WithAnyOf(subs ...*Builder) *Builder {
	return b.withSchemaList("anyOf", subs, func(s *Schema, schemas []*Schema) { s.AnyOf = schemas })
}

func (b *Builder) WithOneOf(subs ...*Builder) *Builder {
	return b.withSchemaList("oneOf", subs, func(s *Schema, schemas []*Schema) { s.OneOf = schemas })
}

func (b *Builder) WithNot(sub *Builder) *Builder {
	sch, fb := b.toSchema("not", sub)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.Not = sch })
}

func (b *Builder) WithDefinition(name string, def *Builder) *Builder {
	sch, fb := b.toSchema("definitions", def)
	if fb != nil {
		return fb
	}
	return b.set(func(s *Schema) { s.Definitions = s.Definitions.Set(name, sch) })
}

// --

// buildSource synthesizes the raw json form of a built schema, so
// that pointer-based reference resolution works on builder output the
// same way it does on decoded documents. Schemas that already carry
// their decoded source keep it.
func buildSource(s *Schema) any {
	if s.Always != nil {
		return *s.Always
	}
	if s.Source != nil {
		return s.Source
	}
	m := map[string]any{}
	setStr := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	setStr("$id", s.ID)
	setStr("$ref", s.Ref)
	setStr("title", s.Title)
	setStr("description", s.Description)
	setStr("format", s.Format)
	if s.Default != nil {
		m["default"] = s.Default
	}
	if s.Examples != nil {
		m["examples"] = s.Examples
	}

	setRat := func(k string, r *big.Rat) {
		if r != nil {
			m[k] = ratNumber(r)
		}
	}
	setRat("multipleOf", s.MultipleOf)
	setRat("maximum", s.Maximum)
	setRat("minimum", s.Minimum)
	setBoundary := func(k string, eb *ExclusiveBoundary) {
		if eb == nil {
			return
		}
		if eb.Bool != nil {
			m[k] = *eb.Bool
		} else if eb.Number != nil {
			m[k] = ratNumber(eb.Number)
		}
	}
	setBoundary("exclusiveMaximum", s.ExclusiveMaximum)
	setBoundary("exclusiveMinimum", s.ExclusiveMinimum)

	setInt := func(k string, n int) {
		if n != -1 {
			m[k] = json.Number(strconv.Itoa(n))
		}
	}
	setInt("maxLength", s.MaxLength)
	setInt("minLength", s.MinLength)
	if s.Pattern != nil {
		m["pattern"] = s.Pattern.String()
	}

	switch items := s.Items.(type) {
	case *Schema:
		m["items"] = buildSource(items)
	case []*Schema:
		arr := make([]any, len(items))
		for i, item := range items {
			arr[i] = buildSource(item)
		}
		m["items"] = arr
	}
	switch ai := s.AdditionalItems.(type) {
	case bool:
		m["additionalItems"] = ai
	case *Schema:
		m["additionalItems"] = buildSource(ai)
	}
	setInt("maxItems", s.MaxItems)
	setInt("minItems", s.MinItems)
	if s.UniqueItems {
		m["uniqueItems"] = true
	}
	if s.Contains != nil {
		m["contains"] = buildSource(s.Contains)
	}

	setInt("maxProperties", s.MaxProperties)
	setInt("minProperties", s.MinProperties)
	if len(s.Required) > 0 {
		arr := make([]any, len(s.Required))
		for i, name := range s.Required {
			arr[i] = name
		}
		m["required"] = arr
	}
	setSchemata := func(k string, schemata Schemata) {
		if len(schemata) == 0 {
			return
		}
		obj := make(map[string]any, len(schemata))
		for _, prop := range schemata {
			obj[prop.Name] = buildSource(prop.Schema)
		}
		m[k] = obj
	}
	setSchemata("properties", s.Properties)
	setSchemata("definitions", s.Definitions)
	if len(s.PatternProperties) > 0 {
		obj := make(map[string]any, len(s.PatternProperties))
		for _, ps := range s.PatternProperties {
			obj[ps.Pattern.String()] = buildSource(ps.Schema)
		}
		m["patternProperties"] = obj
	}
	switch ap := s.AdditionalProperties.(type) {
	case bool:
		m["additionalProperties"] = ap
	case *Schema:
		m["additionalProperties"] = buildSource(ap)
	}
	if len(s.Dependencies) > 0 {
		obj := make(map[string]any, len(s.Dependencies))
		for _, dep := range s.Dependencies {
			if dep.Schema != nil {
				obj[dep.Prop] = buildSource(dep.Schema)
			} else {
				arr := make([]any, len(dep.Required))
				for i, name := range dep.Required {
					arr[i] = name
				}
				obj[dep.Prop] = arr
			}
		}
		m["dependencies"] = obj
	}
	if s.PropertyNames != nil {
		m["propertyNames"] = buildSource(s.PropertyNames)
	}

	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Const != nil {
		m["const"] = s.Const[0]
	}
	if kinds := s.Types.Kinds(); len(kinds) == 1 {
		m["type"] = kinds[0]
	} else if len(kinds) > 1 {
		arr := make([]any, len(kinds))
		for i, k := range kinds {
			arr[i] = k
		}
		m["type"] = arr
	}
	setSchemaList := func(k string, schemas []*Schema) {
		if len(schemas) == 0 {
			return
		}
		arr := make([]any, len(schemas))
		for i, sub := range schemas {
			arr[i] = buildSource(sub)
		}
		m[k] = arr
	}
	setSchemaList("allOf", s.AllOf)
	setSchemaList("anyOf", s.AnyOf)
	setSchemaList("oneOf", s.OneOf)
	if s.Not != nil {
		m["not"] = buildSource(s.Not)
	}
	return m
}

func ratNumber(r *big.Rat) json.Number {
	if r.IsInt() {
		return json.Number(r.Num().String())
	}
	f, _ := r.Float64()
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}
