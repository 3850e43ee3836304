package jsonschema

import (
	goregexp "regexp"

	"github.com/dlclark/regexp2"
)

// Regexp is the regular expression engine used for pattern and
// patternProperties. Matching is unanchored: a pattern may match
// anywhere in the string.
type Regexp interface {
	MatchString(s string) bool
	String() string
}

// RegexpEngine compiles a regular expression.
type RegexpEngine func(expr string) (Regexp, error)

// ECMARegexp compiles expr with ECMA-262 semantics. This is the
// default engine, since json-schema specifies ECMA dialect patterns.
func ECMARegexp(expr string) (Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return (*ecmaRegexp)(re), nil
}

type ecmaRegexp regexp2.Regexp

func (re *ecmaRegexp) MatchString(s string) bool {
	matched, err := (*regexp2.Regexp)(re).MatchString(s)
	return err == nil && matched
}

func (re *ecmaRegexp) String() string {
	return (*regexp2.Regexp)(re).String()
}

// GoRegexp compiles expr with the standard library regexp package,
// for callers that prefer RE2 guarantees over ECMA fidelity.
func GoRegexp(expr string) (Regexp, error) {
	re, err := goregexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}
