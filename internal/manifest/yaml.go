package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML manifest. Unknown keys are rejected.
func LoadYAML(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	for i, decl := range m.Flags {
		if decl.Name == "" {
			return nil, &LoadError{
				Field:   fmt.Sprintf("flags[%d].name", i),
				Message: "name is required",
			}
		}
	}
	return &m, nil
}
