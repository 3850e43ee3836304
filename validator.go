package jsonschema

import (
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/json-tools/jsonschema/kind"
)

// A Validator checks json values against schemas. The zero value is
// ready to use. Validators hold no per-call state, so one Validator
// may be shared across goroutines.
type Validator struct {
	// Pool provides namespaces beyond those collected from the schema
	// itself, merged over DefaultPool.
	Pool Pool
	// MaxRefDepth bounds $ref chasing. 0 means DefaultMaxRefDepth.
	MaxRefDepth int
	// AssertFormat turns the format keyword into an assertion. It is
	// an annotation by default, as in draft-04/06.
	AssertFormat bool
}

// Validate checks v against sch. It returns nil on success, an
// ErrorList with the complete set of failures, or
// InvalidJSONTypeError if v is not a json value.
func Validate(v any, sch *Schema) error {
	var vd Validator
	return vd.Validate(v, sch)
}

// ValidateAt checks v against the subschema of sch located by ref.
func ValidateAt(v any, sch *Schema, ref string) error {
	var vd Validator
	return vd.ValidateAt(v, sch, ref)
}

func (vd *Validator) Validate(v any, sch *Schema) error {
	if err := checkJSONValue(v); err != nil {
		return err
	}
	st, ns := vd.newState(sch)
	if errs := st.validate(ns, sch, sch, v, nil, 0); len(errs) > 0 {
		return ErrorList(errs)
	}
	return nil
}

func (vd *Validator) ValidateAt(v any, sch *Schema, ref string) error {
	if err := checkJSONValue(v); err != nil {
		return err
	}
	st, ns := vd.newState(sch)
	r := resolver{pool: st.pool, maxDepth: st.maxDepth}
	ns2, target, ok := r.resolve(rootNamespace(ns, sch), sch, ref, 0)
	if !ok {
		return ErrorList{{Kind: &kind.UnresolvableReference{Ref: ref}}}
	}
	root := sch
	if pooled, ok := st.pool[ns2]; ok {
		root = pooled
	}
	if errs := st.validate(ns2, root, target, v, nil, 0); len(errs) > 0 {
		return ErrorList(errs)
	}
	return nil
}

// newState builds the pool for one validation pass: the default
// metaschema pool, the embedder's pool, every id found in the schema
// tree, and the root schema itself under its namespace.
func (vd *Validator) newState(sch *Schema) (*vstate, string) {
	pool := DefaultPool()
	for ns, s := range vd.Pool {
		pool.Add(ns, s)
	}
	ns := CollectIDs(sch, pool)
	pool.Add(ns, sch)

	maxDepth := vd.MaxRefDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxRefDepth
	}
	return &vstate{vd: vd, pool: pool, maxDepth: maxDepth}, ns
}

type vstate struct {
	vd       *Validator
	pool     Pool
	maxDepth int
}

// validate runs every keyword validator against v in fixed order,
// collecting all errors. Leaf errors carry the path at the point the
// leaf value failed; composite keywords add no segments of their own.
func (st *vstate) validate(ns string, root, sch *Schema, v any, path []string, refDepth int) []*Error {
	if sch.Always != nil {
		if !*sch.Always {
			return []*Error{errAt(path, &kind.AlwaysFail{})}
		}
		return nil
	}

	var errs []*Error
	errs = append(errs, st.validateNumber(sch, v, path)...)
	errs = append(errs, st.validateString(sch, v, path)...)
	errs = append(errs, st.validateArray(ns, root, sch, v, path, refDepth)...)
	errs = append(errs, st.validateObject(ns, root, sch, v, path, refDepth)...)
	errs = append(errs, st.validateGeneric(sch, v, path)...)
	errs = append(errs, st.validateCombinators(ns, root, sch, v, path, refDepth)...)
	errs = append(errs, st.validateRef(ns, root, sch, v, path, refDepth)...)
	return errs
}

func (st *vstate) validateNumber(sch *Schema, v any, path []string) []*Error {
	num, ok := rat(v)
	if !ok {
		return nil
	}
	var errs []*Error
	add := func(k ErrorKind) { errs = append(errs, errAt(path, k)) }

	if sch.MultipleOf != nil {
		if q := new(big.Rat).Quo(num, sch.MultipleOf); !q.IsInt() {
			add(&kind.MultipleOf{Got: num, Want: sch.MultipleOf})
		}
	}
	if sch.Maximum != nil {
		if sch.ExclusiveMaximum.strict() {
			// draft-04: boolean exclusiveMaximum makes the bound strict.
			if num.Cmp(sch.Maximum) >= 0 {
				add(&kind.ExclusiveMaximum{Got: num, Want: sch.Maximum})
			}
		} else if num.Cmp(sch.Maximum) > 0 {
			add(&kind.Maximum{Got: num, Want: sch.Maximum})
		}
	}
	if sch.ExclusiveMaximum != nil && sch.ExclusiveMaximum.Number != nil {
		if num.Cmp(sch.ExclusiveMaximum.Number) >= 0 {
			add(&kind.ExclusiveMaximum{Got: num, Want: sch.ExclusiveMaximum.Number})
		}
	}
	if sch.Minimum != nil {
		if sch.ExclusiveMinimum.strict() {
			if num.Cmp(sch.Minimum) <= 0 {
				add(&kind.ExclusiveMinimum{Got: num, Want: sch.Minimum})
			}
		} else if num.Cmp(sch.Minimum) < 0 {
			add(&kind.Minimum{Got: num, Want: sch.Minimum})
		}
	}
	if sch.ExclusiveMinimum != nil && sch.ExclusiveMinimum.Number != nil {
		if num.Cmp(sch.ExclusiveMinimum.Number) <= 0 {
			add(&kind.ExclusiveMinimum{Got: num, Want: sch.ExclusiveMinimum.Number})
		}
	}
	return errs
}

func (st *vstate) validateString(sch *Schema, v any, path []string) []*Error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	var errs []*Error

	if sch.MinLength != -1 || sch.MaxLength != -1 {
		length := utf8.RuneCountInString(s)
		if sch.MaxLength != -1 && length > sch.MaxLength {
			errs = append(errs, errAt(path, &kind.MaxLength{Got: length, Want: sch.MaxLength}))
		}
		if sch.MinLength != -1 && length < sch.MinLength {
			errs = append(errs, errAt(path, &kind.MinLength{Got: length, Want: sch.MinLength}))
		}
	}
	if sch.Pattern != nil && !sch.Pattern.MatchString(s) {
		errs = append(errs, errAt(path, &kind.Pattern{Got: s, Want: sch.Pattern.String()}))
	}
	return errs
}

func (st *vstate) validateArray(ns string, root, sch *Schema, v any, path []string, refDepth int) []*Error {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var errs []*Error

	switch items := sch.Items.(type) {
	case *Schema:
		for i, item := range arr {
			errs = append(errs, st.validate(ns, root, items, item, childPath(path, strconv.Itoa(i)), refDepth)...)
		}
	case []*Schema:
		for i, item := range arr {
			if i >= len(items) {
				break
			}
			errs = append(errs, st.validate(ns, root, items[i], item, childPath(path, strconv.Itoa(i)), refDepth)...)
		}
		switch ai := sch.AdditionalItems.(type) {
		case *Schema:
			for i := len(items); i < len(arr); i++ {
				errs = append(errs, st.validate(ns, root, ai, arr[i], childPath(path, strconv.Itoa(i)), refDepth)...)
			}
		case bool:
			if !ai && len(arr) > len(items) {
				errs = append(errs, errAt(path, &kind.AdditionalItems{Count: len(arr) - len(items)}))
			}
		}
	}

	if sch.MaxItems != -1 && len(arr) > sch.MaxItems {
		errs = append(errs, errAt(path, &kind.MaxItems{Got: len(arr), Want: sch.MaxItems}))
	}
	if sch.MinItems != -1 && len(arr) < sch.MinItems {
		errs = append(errs, errAt(path, &kind.MinItems{Got: len(arr), Want: sch.MinItems}))
	}

	if sch.UniqueItems {
		for i := 1; i < len(arr); i++ {
			for j := 0; j < i; j++ {
				if eq, _ := equals(arr[i], arr[j]); eq {
					errs = append(errs, errAt(path, &kind.UniqueItems{Duplicates: [2]int{j, i}}))
				}
			}
		}
	}

	if sch.Contains != nil {
		matched := false
		for i, item := range arr {
			if sub := st.validate(ns, root, sch.Contains, item, childPath(path, strconv.Itoa(i)), refDepth); len(sub) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			errs = append(errs, errAt(path, &kind.Contains{}))
		}
	}
	return errs
}

func (st *vstate) validateObject(ns string, root, sch *Schema, v any, path []string, refDepth int) []*Error {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var errs []*Error

	if sch.MaxProperties != -1 && len(obj) > sch.MaxProperties {
		errs = append(errs, errAt(path, &kind.MaxProperties{Got: len(obj), Want: sch.MaxProperties}))
	}
	if sch.MinProperties != -1 && len(obj) < sch.MinProperties {
		errs = append(errs, errAt(path, &kind.MinProperties{Got: len(obj), Want: sch.MinProperties}))
	}
	if len(sch.Required) > 0 {
		var missing []string
		for _, pname := range sch.Required {
			if _, ok := obj[pname]; !ok {
				missing = append(missing, pname)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, errAt(path, &kind.Required{Missing: missing}))
		}
	}

	for _, prop := range sch.Properties {
		if pvalue, ok := obj[prop.Name]; ok {
			errs = append(errs, st.validate(ns, root, prop.Schema, pvalue, childPath(path, prop.Name), refDepth)...)
		}
	}

	for _, ps := range sch.PatternProperties {
		for _, pname := range sortedKeys(obj) {
			if ps.Pattern.MatchString(pname) {
				errs = append(errs, st.validate(ns, root, ps.Schema, obj[pname], childPath(path, pname), refDepth)...)
			}
		}
	}

	if sch.AdditionalProperties != nil {
		var leftovers []string
		for _, pname := range sortedKeys(obj) {
			if _, ok := sch.Properties.Get(pname); ok {
				continue
			}
			matched := false
			for _, ps := range sch.PatternProperties {
				if ps.Pattern.MatchString(pname) {
					matched = true
					break
				}
			}
			if !matched {
				leftovers = append(leftovers, pname)
			}
		}
		switch ap := sch.AdditionalProperties.(type) {
		case bool:
			if !ap && len(leftovers) > 0 {
				errs = append(errs, errAt(path, &kind.AdditionalProperties{Properties: leftovers}))
			}
		case *Schema:
			for _, pname := range leftovers {
				errs = append(errs, st.validate(ns, root, ap, obj[pname], childPath(path, pname), refDepth)...)
			}
		}
	}

	for _, dep := range sch.Dependencies {
		if _, ok := obj[dep.Prop]; !ok {
			continue
		}
		if dep.Schema != nil {
			// the whole object validates against the dependency schema.
			errs = append(errs, st.validate(ns, root, dep.Schema, v, path, refDepth)...)
			continue
		}
		var missing []string
		for _, pname := range dep.Required {
			if _, ok := obj[pname]; !ok {
				missing = append(missing, pname)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, errAt(path, &kind.Dependency{Prop: dep.Prop, Missing: missing}))
		}
	}

	if sch.PropertyNames != nil {
		var bad []string
		for _, pname := range sortedKeys(obj) {
			if sub := st.validate(ns, root, sch.PropertyNames, pname, childPath(path, pname), refDepth); len(sub) > 0 {
				bad = append(bad, pname)
			}
		}
		if len(bad) > 0 {
			errs = append(errs, errAt(path, &kind.PropertyNames{Properties: bad}))
		}
	}
	return errs
}

func (st *vstate) validateGeneric(sch *Schema, v any, path []string) []*Error {
	var errs []*Error

	if len(sch.Enum) > 0 {
		matched := false
		for _, item := range sch.Enum {
			if eq, _ := equals(v, item); eq {
				matched = true
				break
			}
		}
		if !matched {
			errs = append(errs, errAt(path, &kind.Enum{Got: v, Want: sch.Enum}))
		}
	}
	if sch.Const != nil {
		if eq, _ := equals(v, sch.Const[0]); !eq {
			errs = append(errs, errAt(path, &kind.Const{Got: v, Want: sch.Const[0]}))
		}
	}
	if !sch.Types.IsAny() {
		vt, err := jsonType(v)
		if err == nil && !sch.Types.contains(v, vt) {
			errs = append(errs, errAt(path, &kind.Type{Got: vt, Want: sch.Types.Kinds()}))
		}
	}
	if st.vd.AssertFormat && sch.Format != "" {
		if f, ok := Formats[sch.Format]; ok {
			if err := f.Validate(v); err != nil {
				errs = append(errs, errAt(path, &kind.Format{Got: v, Want: sch.Format, Err: err}))
			}
		}
	}
	return errs
}

func (st *vstate) validateCombinators(ns string, root, sch *Schema, v any, path []string, refDepth int) []*Error {
	var errs []*Error

	// allOf stops at the first failing branch and surfaces that
	// branch's errors, unlike the aggregating keywords above.
	for _, branch := range sch.AllOf {
		if sub := st.validate(ns, root, branch, v, path, refDepth); len(sub) > 0 {
			errs = append(errs, sub...)
			break
		}
	}

	if len(sch.AnyOf) > 0 {
		matched := false
		for _, branch := range sch.AnyOf {
			if sub := st.validate(ns, root, branch, v, path, refDepth); len(sub) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			errs = append(errs, errAt(path, &kind.AnyOf{}))
		}
	}

	if len(sch.OneOf) > 0 {
		matched := 0
		for _, branch := range sch.OneOf {
			if sub := st.validate(ns, root, branch, v, path, refDepth); len(sub) == 0 {
				matched++
			}
		}
		switch {
		case matched == 0:
			errs = append(errs, errAt(path, &kind.OneOfNone{}))
		case matched > 1:
			errs = append(errs, errAt(path, &kind.OneOfMany{Matched: matched}))
		}
	}

	if sch.Not != nil {
		if sub := st.validate(ns, root, sch.Not, v, path, refDepth); len(sub) == 0 {
			errs = append(errs, errAt(path, &kind.Not{}))
		}
	}
	return errs
}

// validateRef resolves $ref and validates against the target at the
// same path: indirection is transparent to path reporting. Chasing
// stops at maxDepth, so reference cycles terminate instead of
// recursing forever.
func (st *vstate) validateRef(ns string, root, sch *Schema, v any, path []string, refDepth int) []*Error {
	if sch.Ref == "" {
		return nil
	}
	if refDepth >= st.maxDepth {
		return nil
	}
	r := resolver{pool: st.pool, maxDepth: st.maxDepth}
	ns2, target, ok := r.resolve(rootNamespace(ns, root), root, sch.Ref, 0)
	if !ok {
		return []*Error{errAt(path, &kind.UnresolvableReference{Ref: sch.Ref})}
	}
	newRoot := root
	if pooled, ok := st.pool[ns2]; ok {
		newRoot = pooled
	}
	return st.validate(ns2, newRoot, target, v, path, refDepth+1)
}

func errAt(path []string, k ErrorKind) *Error {
	return &Error{InstanceLocation: append([]string(nil), path...), Kind: k}
}

func childPath(path []string, seg string) []string {
	np := make([]string, len(path)+1)
	copy(np, path)
	np[len(path)] = seg
	return np
}
