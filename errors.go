package jsonschema

import (
	"fmt"
	"strings"
)

// InvalidJSONTypeError tells that a go value passed for validation is
// not a valid json value.
type InvalidJSONTypeError string

func (e InvalidJSONTypeError) Error() string {
	return fmt.Sprintf("jsonschema: invalid jsonType: %s", string(e))
}

// --

// DecodeError is returned when a json document cannot be decoded into
// a Schema.
type DecodeError struct {
	Keyword string // keyword whose value is malformed. empty for the root.
	Message string
}

func (e *DecodeError) Error() string {
	if e.Keyword == "" {
		return fmt.Sprintf("jsonschema: cannot decode schema: %s", e.Message)
	}
	return fmt.Sprintf("jsonschema: cannot decode %q: %s", e.Keyword, e.Message)
}

func decodeError(keyword, format string, a ...any) *DecodeError {
	return &DecodeError{Keyword: keyword, Message: fmt.Sprintf(format, a...)}
}

// --

// ErrorKind tells the keyword that failed, with its expected and
// actual values where applicable. The implementations live in the
// kind package and form a closed set.
type ErrorKind interface {
	// KeywordPath gives the path of the failing keyword within the schema.
	KeywordPath() []string
	// String gives a human readable description of the failure.
	String() string
}

// Error is a single validation failure, tagged with the location of
// the offending value within the instance.
type Error struct {
	// InstanceLocation is the path from the validation root to the
	// value that failed. Empty for the root.
	InstanceLocation []string
	Kind             ErrorKind
}

func (e *Error) Error() string {
	return fmt.Sprintf("at %s: %s", instancePtr(e.InstanceLocation), e.Kind)
}

// InstancePointer returns InstanceLocation as a json-pointer.
func (e *Error) InstancePointer() string {
	return instancePtr(e.InstanceLocation)
}

// ErrorList is the complete set of failures found in one validation
// pass. It is never empty when returned.
type ErrorList []*Error

func (el ErrorList) Error() string {
	lines := make([]string, 0, len(el))
	for _, e := range el {
		lines = append(lines, e.Error())
	}
	return "jsonschema: " + strings.Join(lines, "; ")
}

func instancePtr(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, seg := range loc {
		sb.WriteByte('/')
		sb.WriteString(escape(seg))
	}
	return sb.String()
}

// escape converts given token to a valid json-pointer token.
func escape(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}
