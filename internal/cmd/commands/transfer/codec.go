package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// Formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFor picks the format from a file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads collections in either a single-object or a list form.
func Decode(data []byte, format string) ([]*pw.RESTCollection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var (
		list []*pw.RESTCollection
		one  pw.RESTCollection
	)
	switch format {
	case FormatYAML:
		var probe any
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if _, ok := probe.([]any); ok {
			if err := yaml.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("invalid YAML: %w", err)
			}
			break
		}
		if err := yaml.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		list = []*pw.RESTCollection{&one}

	default:
		if data[0] == '[' {
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("invalid JSON: %w", err)
			}
			break
		}
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		list = []*pw.RESTCollection{&one}
	}

	for i, c := range list {
		if c == nil {
			return nil, fmt.Errorf("collection %d is empty", i)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("collection %d (%s): %w", i, c.Name, err)
		}
	}
	return list, nil
}

// Encode writes collections as an indented list.
func Encode(collections []*pw.RESTCollection, format string) ([]byte, error) {
	if collections == nil {
		collections = []*pw.RESTCollection{}
	}
	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(collections); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	out, err := json.MarshalIndent(collections, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// DefaultFileName derives an export file name from a workspace name.
func DefaultFileName(name, format string) string {
	base := strcase.ToKebab(strings.TrimSpace(name))
	if base == "" {
		base = "collections"
	}
	return base + "." + format
}
