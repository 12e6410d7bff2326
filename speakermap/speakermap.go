// Package speakermap loads the caller-supplied mapping from speaker labels
// to display names.
//
// A map loaded here is authoritative. Drafts proposed by the generator are
// plain map[string]any values in the rewrite package and never pass through
// Load, so a draft cannot be mistaken for a confirmed map.
package speakermap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/longscribe/errors"
)

const field = "speaker_map"

// Map maps a speaker label to a display name.
type Map map[string]string

// Load parses value as inline JSON, or as the path of a JSON or YAML file.
// An empty value yields an empty, unconfirmed map. Any other value that is
// not an object of scalars is an INVALID_INPUT error.
func Load(value string) (m Map, confirmed bool, err error) {
	if value == "" {
		return Map{}, false, nil
	}

	raw := []byte(value)
	yamlFile := false
	if info, statErr := os.Stat(value); statErr == nil && !info.IsDir() {
		raw, err = os.ReadFile(value)
		if err != nil {
			return nil, false, errors.InvalidInput(field, "cannot read "+value).WithCause(err)
		}
		ext := strings.ToLower(filepath.Ext(value))
		yamlFile = ext == ".yaml" || ext == ".yml"
	}

	var data map[string]any
	if yamlFile {
		err = yaml.Unmarshal(raw, &data)
	} else {
		err = json.Unmarshal(raw, &data)
	}
	if err != nil || data == nil {
		e := errors.InvalidInput(field, "must be a JSON object or a path to a JSON or YAML file")
		if err != nil {
			e = e.WithCause(err)
		}
		return nil, false, e
	}

	m, err = FromAny(data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// FromAny converts a decoded object. Null values become "" and scalars are
// stringified.
func FromAny(data map[string]any) (Map, error) {
	m := make(Map, len(data))
	for k, v := range data {
		s, ok := scalarString(v)
		if !ok {
			return nil, errors.InvalidInput(field, fmt.Sprintf("value for %q must be a string", k))
		}
		m[k] = s
	}
	return m, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}

// JSON returns the compact JSON form used in prompts, or "" for an empty map.
func (m Map) JSON() string {
	if len(m) == 0 {
		return ""
	}
	data, err := encode(m, "")
	if err != nil {
		return ""
	}
	return string(data)
}

// Labels returns the speaker labels in sorted order.
func (m Map) Labels() []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// Save writes m to path as indented JSON.
func Save(path string, m Map) error {
	data, err := encode(m, "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func encode(m Map, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(map[string]string(m)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
