package jsonschema

import (
	"strconv"
	"strings"
)

// DefaultMaxRefDepth bounds how many chained $ref hops are followed
// before resolution gives up and returns the last schema reached. It
// is a pragmatic bound, not a cycle detector: reference chains longer
// than this resolve incorrectly.
const DefaultMaxRefDepth = 10

// Pool maps namespace strings to root schemas, for cross-document
// reference resolution.
type Pool map[string]*Schema

// NewPool returns an empty pool.
func NewPool() Pool {
	return Pool{}
}

// Add registers sch under the given namespace. A later Add with the
// same namespace wins.
func (p Pool) Add(ns string, sch *Schema) {
	p[ns] = sch
}

func (p Pool) clone() Pool {
	out := make(Pool, len(p))
	for ns, sch := range p {
		out[ns] = sch
	}
	return out
}

// --

// ParseJSONPointer splits ref on '#' and merges the document part
// against the current namespace. It reports whether the fragment was
// a json-pointer: pointer fragments are decomposed into unescaped
// path tokens, while plain fragments become a single anchor token.
func ParseJSONPointer(ref, ns string) (isPointer bool, namespace string, path []string) {
	base, frag, _ := strings.Cut(ref, "#")
	namespace = mergeNamespace(ns, base)
	if strings.HasPrefix(frag, "/") {
		isPointer = true
		for _, token := range strings.Split(frag, "/")[1:] {
			path = append(path, unescapeToken(token))
		}
		return isPointer, namespace, path
	}
	if frag != "" {
		path = []string{frag}
	}
	return false, namespace, path
}

// mergeNamespace resolves the document part of a reference against
// the current namespace: an absolute reference replaces it outright,
// a bare filename-like segment replaces its last path segment, and an
// empty reference keeps it.
func mergeNamespace(ns, doc string) string {
	if doc == "" {
		return ns
	}
	if strings.Contains(doc, "//") || strings.HasPrefix(doc, "/") {
		return doc
	}
	if i := strings.LastIndexByte(ns, '/'); i != -1 {
		return ns[:i+1] + doc
	}
	return doc
}

// unescapeToken decodes a json-pointer token per RFC 6901:
// ~1 becomes '/', then ~0 becomes '~', then %25 becomes '%'.
func unescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	token = strings.ReplaceAll(token, "%25", "%")
	return token
}

// poolKey gives the fully-qualified pool key for a non-pointer
// reference: the namespace, with the anchor fragment when present.
func poolKey(ns string, path []string) string {
	if len(path) == 1 {
		return ns + "#" + path[0]
	}
	return ns
}

// --

// Resolve dereferences ref against the pool, starting from the given
// root schema and namespace, chasing chained refs up to
// DefaultMaxRefDepth. It never fails hard: an unresolvable reference
// reports ok == false, to be surfaced by the caller.
func Resolve(ns string, pool Pool, root *Schema, ref string) (namespace string, sch *Schema, ok bool) {
	r := resolver{pool: pool, maxDepth: DefaultMaxRefDepth}
	return r.resolve(rootNamespace(ns, root), root, ref, 0)
}

// rootNamespace establishes the namespace from the schema's own id,
// falling back to the passed-in one.
func rootNamespace(ns string, root *Schema) string {
	if root != nil && root.ID != "" {
		return mergeNamespace(ns, strings.TrimSuffix(root.ID, "#"))
	}
	return ns
}

type resolver struct {
	pool     Pool
	maxDepth int
}

func (r resolver) resolve(ns string, root *Schema, ref string, depth int) (string, *Schema, bool) {
	isPointer, ns2, path := ParseJSONPointer(ref, ns)

	var sch, owner *Schema
	switch {
	case isPointer:
		// dig into the owning root's raw source.
		owner = root
		if pooled, ok := r.pool[ns2]; ok {
			owner = pooled
		}
		if owner == nil {
			return "", nil, false
		}
		raw, ok := dig(owner.Source, path)
		if !ok {
			return "", nil, false
		}
		dec, err := Decode(raw)
		if err != nil {
			return "", nil, false
		}
		sch = dec
	case len(path) == 0:
		// bare namespace reference, possibly the root itself.
		if pooled, ok := r.pool[ns2]; ok {
			sch, owner = pooled, pooled
		} else if ns2 == ns && root != nil {
			sch, owner = root, root
		} else {
			return "", nil, false
		}
	default:
		pooled, ok := r.pool[poolKey(ns2, path)]
		if !ok {
			return "", nil, false
		}
		sch, owner = pooled, pooled
	}

	// a resolved node carrying its own $ref is a chained reference.
	if sch.Ref != "" && depth < r.maxDepth {
		if ns3, sch3, ok := r.resolve(rootNamespace(ns2, owner), owner, sch.Ref, depth+1); ok {
			return ns3, sch3, true
		}
		return "", nil, false
	}
	return ns2, sch, true
}

// dig walks raw json structurally along the decomposed pointer path.
func dig(v any, path []string) (any, bool) {
	for _, token := range path {
		switch node := v.(type) {
		case map[string]any:
			child, ok := node[token]
			if !ok {
				return nil, false
			}
			v = child
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// --

// CollectIDs walks the schema's raw source tree and registers every
// node carrying an id/$id under its resolved namespace, tracking
// namespace inheritance into children. It returns the root namespace.
// The walk is over raw source rather than the typed model, so ids
// inside keywords the model does not cover are still found.
func CollectIDs(sch *Schema, pool Pool) string {
	if sch == nil || sch.Source == nil {
		return ""
	}
	ns := ""
	if sch.ID != "" {
		ns = strings.TrimSuffix(sch.ID, "#")
	}
	collectIDs(sch.Source, ns, pool)
	return ns
}

func collectIDs(v any, ns string, pool Pool) {
	switch v := v.(type) {
	case map[string]any:
		cur := ns
		if id := rawID(v); id != "" {
			_, ns2, path := ParseJSONPointer(strings.TrimSuffix(id, "#"), ns)
			if sch, err := Decode(v); err == nil {
				pool[poolKey(ns2, path)] = sch
			}
			if len(path) == 0 {
				cur = ns2
			}
		}
		for _, k := range sortedKeys(v) {
			collectIDs(v[k], cur, pool)
		}
	case []any:
		for _, item := range v {
			collectIDs(item, ns, pool)
		}
	}
}

func rawID(obj map[string]any) string {
	if id, ok := obj["$id"].(string); ok && id != "" {
		return id
	}
	if id, ok := obj["id"].(string); ok {
		return id
	}
	return ""
}
