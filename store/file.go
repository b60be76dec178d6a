// Package store persists extracted ticker data to files or a SQLite database.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Encode and SaveFile.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode renders v as indented JSON or YAML.
func Encode(v interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json: %w", err)
		}
		return pretty.Pretty(data), nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// DefaultPath is where a ticker's data is saved when no path is given.
func DefaultPath(outDir, ticker, format string) string {
	ext := FormatJSON
	if f := strings.ToLower(format); f == FormatYAML || f == "yml" {
		ext = FormatYAML
	}
	return filepath.Join(outDir, fmt.Sprintf("%s.%s", ticker, ext))
}

// SaveFile encodes v and writes it to path, creating missing directories.
func SaveFile(path string, v interface{}, format string) error {
	data, err := Encode(v, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}
