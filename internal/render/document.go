package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/hirewire-superset/internal/config"
)

// Document returns the Superset key/value shape of s, with secrets masked
// unless reveal is set.
func Document(s config.Settings, reveal bool) map[string]any {
	doc := s.Superset()
	if reveal {
		return doc
	}
	return config.MaskSecrets(doc).(map[string]any)
}

// JSON writes the document as indented JSON.
func JSON(w io.Writer, s config.Settings, reveal bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document(s, reveal)); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}

// YAML writes the document as YAML.
func YAML(w io.Writer, s config.Settings, reveal bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document(s, reveal)); err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}
	return enc.Close()
}
