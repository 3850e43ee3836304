package jsonschema

import (
	"errors"
	"fmt"
	"net/netip"
	gourl "net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format checks whether a value is of a named format. Formats apply
// to strings only; other values pass.
type Format struct {
	Name     string
	Validate func(v any) error
}

// Formats holds the format assertions known to the validator. Unknown
// format names always pass.
var Formats = map[string]*Format{
	"date-time":     {"date-time", validateDateTime},
	"date":          {"date", validateDate},
	"time":          {"time", validateTime},
	"email":         {"email", validateEmail},
	"hostname":      {"hostname", validateHostname},
	"ipv4":          {"ipv4", validateIPV4},
	"ipv6":          {"ipv6", validateIPV6},
	"uri":           {"uri", validateURI},
	"uri-reference": {"uri-reference", validateURIReference},
	"json-pointer":  {"json-pointer", validateJSONPointer},
	"regex":         {"regex", validateRegexFormat},
	"uuid":          {"uuid", validateUUID},
}

func validateDateTime(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := time.Parse(time.RFC3339, s)
	return err
}

func validateDate(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := time.Parse("2006-01-02", s)
	return err
}

func validateTime(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := time.Parse("15:04:05Z07:00", s)
	return err
}

func validateEmail(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return errors.New("missing local part or domain")
	}
	local, domain := s[:at], s[at+1:]
	if strings.ContainsAny(local, " ") {
		return errors.New("local part must not contain spaces")
	}
	return validateHostname(domain)
}

func validateHostname(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	// see https://en.wikipedia.org/wiki/Hostname#Restrictions_on_valid_host_names
	s = strings.TrimSuffix(s, ".")
	if len(s) == 0 || len(s) > 253 {
		return errors.New("must be 1 to 253 characters long")
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return errors.New("label must be 1 to 63 characters long")
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return errors.New("label must not begin or end with hyphen")
		}
		for _, c := range label {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-'
			if !valid {
				return fmt.Errorf("invalid character %q", c)
			}
		}
	}
	return nil
}

func validateIPV4(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if !addr.Is4() {
		return errors.New("not an ipv4 address")
	}
	return nil
}

func validateIPV6(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if !strings.Contains(s, ":") {
		return errors.New("not an ipv6 address")
	}
	_, err := netip.ParseAddr(s)
	return err
}

func validateURI(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	u, err := gourl.Parse(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return errors.New("relative url")
	}
	return nil
}

func validateURIReference(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if strings.Contains(s, `\`) {
		return errors.New(`contains '\'`)
	}
	_, err := gourl.Parse(s)
	return err
}

// see https://www.rfc-editor.org/rfc/rfc6901#section-3
func validateJSONPointer(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with '/'")
	}
	for _, token := range strings.Split(s, "/")[1:] {
		for i := 0; i < len(token); i++ {
			if token[i] == '~' {
				if i == len(token)-1 || (token[i+1] != '0' && token[i+1] != '1') {
					return errors.New("~ must be followed by 0 or 1")
				}
				i++
			}
		}
	}
	return nil
}

func validateRegexFormat(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := ECMARegexp(s)
	return err
}

func validateUUID(v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := uuid.Parse(s)
	return err
}
