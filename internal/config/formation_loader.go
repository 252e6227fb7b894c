package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/possession-sim/internal/core/formation"
)

// LoadFormation reads a YAML formation file and validates it.
func LoadFormation(path string) (formation.Formation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formation.Formation{}, fmt.Errorf("read formation: %w", err)
	}

	var f formation.Formation
	if err := yaml.Unmarshal(data, &f); err != nil {
		return formation.Formation{}, fmt.Errorf("parse formation: %w", err)
	}
	if err := f.Validate(); err != nil {
		return formation.Formation{}, fmt.Errorf("formation %s: %w", path, err)
	}

	return f, nil
}

// ResolveFormation returns the formation at cfg.FormationPath, or the
// built-in one when no path is set.
func (c *Config) ResolveFormation() (formation.Formation, error) {
	if c.FormationPath == "" {
		return formation.Anfield(), nil
	}
	return LoadFormation(c.FormationPath)
}
