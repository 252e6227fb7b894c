package sweep

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the YAML layout written by WriteYAML.
type Document struct {
	ID         string  `yaml:"id"`
	Formation  string  `yaml:"formation,omitempty"`
	Directions int     `yaml:"directions"`
	Speeds     int     `yaml:"speeds"`
	Summary    Summary `yaml:"summary"`
	Cells      []Cell  `yaml:"cells"`
}

// WriteYAML encodes the map with its summary for an external renderer.
func (m *Map) WriteYAML(w io.Writer, formation string) error {
	doc := Document{
		ID:         m.ID,
		Formation:  formation,
		Directions: Directions,
		Speeds:     Speeds,
		Summary:    m.Summary(),
		Cells:      m.Cells,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode sweep map: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush sweep map: %w", err)
	}
	return nil
}
