package jsonschema

import (
	"embed"
	"fmt"
	"io"
	gourl "net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// UnmarshalJSON unmarshals into [any] without losing number
// precision, using [json.Number].
func UnmarshalJSON(r io.Reader) (any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err == nil || err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	return doc, nil
}

// --

// FileLoader loads json or yaml documents from the local filesystem.
// There is deliberately no network loader: references resolve against
// the in-memory pool only.
type FileLoader struct{}

// Load reads the document at path, which may also be a file:// url.
// Files with a .yaml/.yml extension are parsed as yaml and normalized
// to json values.
func (l FileLoader) Load(path string) (any, error) {
	path, err := l.toFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
			return nil, err
		}
		return normalizeYAML(doc)
	default:
		return UnmarshalJSON(f)
	}
}

func (l FileLoader) toFile(path string) (string, error) {
	if !strings.HasPrefix(path, "file://") {
		return path, nil
	}
	u, err := gourl.Parse(path)
	if err != nil {
		return "", err
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
		p = filepath.FromSlash(p)
	}
	return p, nil
}

// normalizeYAML converts a yaml document into the json value shapes
// the engine works with, with numbers as json.Number.
func normalizeYAML(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case int:
		return json.Number(fmt.Sprint(v)), nil
	case int64:
		return json.Number(fmt.Sprint(v)), nil
	case uint64:
		return json.Number(fmt.Sprint(v)), nil
	case float64:
		return json.Number(fmt.Sprint(v)), nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			norm, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, pvalue := range v {
			norm, err := normalizeYAML(pvalue)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	default:
		return nil, fmt.Errorf("yaml value %T cannot be represented in json", v)
	}
}

// --

//go:embed metaschemas
var metaFS embed.FS

var (
	metaOnce sync.Once
	metaPool Pool
)

// DefaultPool returns a pool pre-populated with the draft-04 and
// draft-06 metaschemas under their canonical namespaces, so that
// $schema references resolve without network access.
func DefaultPool() Pool {
	metaOnce.Do(func() {
		metaPool = NewPool()
		for _, draft := range []string{"draft-04", "draft-06"} {
			f, err := metaFS.Open("metaschemas/" + draft + "/schema")
			if err != nil {
				panic(fmt.Sprintf("jsonschema: missing %s metaschema: %v", draft, err))
			}
			doc, err := UnmarshalJSON(f)
			f.Close()
			if err != nil {
				panic(fmt.Sprintf("jsonschema: invalid %s metaschema: %v", draft, err))
			}
			sch, err := Decode(doc)
			if err != nil {
				panic(fmt.Sprintf("jsonschema: invalid %s metaschema: %v", draft, err))
			}
			metaPool.Add("http://json-schema.org/"+draft+"/schema", sch)
		}
	})
	return metaPool.clone()
}
