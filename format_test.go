package jsonschema

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestFormats(t *testing.T) {
	tests := []struct {
		format string
		value  string
		valid  bool
	}{
		{"date-time", "2024-03-01T10:20:30Z", true},
		{"date-time", "2024-03-01 10:20:30", false},
		{"date", "2024-03-01", true},
		{"date", "01-03-2024", false},
		{"time", "10:20:30Z", true},
		{"time", "10:20", false},
		{"email", "a@example.com", true},
		{"email", "plainaddress", false},
		{"email", "@example.com", false},
		{"hostname", "example.com", true},
		{"hostname", "-bad-.com", false},
		{"hostname", "under_score.com", false},
		{"ipv4", "192.168.0.1", true},
		{"ipv4", "::1", false},
		{"ipv6", "::1", true},
		{"ipv6", "192.168.0.1", false},
		{"uri", "https://example.com/a", true},
		{"uri", "/relative/only", false},
		{"uri-reference", "/relative/only", true},
		{"uri-reference", `\backslash`, false},
		{"json-pointer", "/a/b~0c/0", true},
		{"json-pointer", "a/b", false},
		{"json-pointer", "/bad~2escape", false},
		{"regex", "^a+$", true},
		{"regex", "(unclosed", false},
		{"uuid", "4d4b2640-1d0b-4e49-a8cf-5f6f8d9c2c35", true},
		{"uuid", "not-a-uuid", false},
	}
	for _, test := range tests {
		f, ok := Formats[test.format]
		if !ok {
			t.Fatalf("missing format %q", test.format)
		}
		err := f.Validate(test.value)
		if (err == nil) != test.valid {
			t.Errorf("%s(%q): err = %v, want valid = %v", test.format, test.value, err, test.valid)
		}
	}
}

// formats constrain strings only.
func TestFormatIgnoresNonStrings(t *testing.T) {
	for name, f := range Formats {
		if err := f.Validate(json.Number("42")); err != nil {
			t.Errorf("%s must pass non-strings: %v", name, err)
		}
	}
}
