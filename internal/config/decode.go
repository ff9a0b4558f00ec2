package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// decodeSettings decodes a JSON or YAML (by extension) settings document onto
// dst. YAML is first converted to JSON so both formats share one strict
// decoder: unknown keys and trailing documents are errors.
func decodeSettings(path string, data []byte, dst *Settings) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("yaml settings %s: %w", path, err)
		}
		if doc == nil {
			// empty file: keep defaults
			return nil
		}
		j, err := json.Marshal(stringKeys(doc))
		if err != nil {
			return fmt.Errorf("yaml settings %s: %w", path, err)
		}
		data = j
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%s settings %s: %w", format, path, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("%s settings %s: trailing data", format, path)
		}
		return fmt.Errorf("%s settings %s: %w", format, path, err)
	}
	return nil
}

// stringKeys rewrites YAML maps with non-string keys (e.g. `1: x`) so the
// tree can be marshaled as JSON.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range x {
			x[k] = stringKeys(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = stringKeys(val)
		}
		return x
	default:
		return v
	}
}
