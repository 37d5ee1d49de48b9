package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default_schema.yaml
var defaultSchemaYAML []byte

var defaultSchema = mustDecodeSchema(defaultSchemaYAML)

// DefaultSchema returns a fresh copy of the built-in taxonomy used when no
// schema has been stored yet.
func DefaultSchema() Schema {
	return defaultSchema.Clone()
}

// DecodeSchemaYAML parses a YAML taxonomy document.
func DecodeSchemaYAML(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("decode schema yaml: %w", err)
	}
	for i := range s.Technologies {
		if !s.Technologies[i].Group.Valid() {
			return Schema{}, fmt.Errorf("technology %q: unknown group %q", s.Technologies[i].Name, s.Technologies[i].Group)
		}
		if s.Technologies[i].SubTechs == nil {
			s.Technologies[i].SubTechs = []string{}
		}
	}
	return s, nil
}

func mustDecodeSchema(data []byte) Schema {
	s, err := DecodeSchemaYAML(data)
	if err != nil {
		panic(err)
	}
	return s
}
