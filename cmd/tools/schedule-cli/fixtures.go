// cmd/tools/schedule-cli/fixtures.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"renovation-workers/internal/models"
)

// Fixture is a contractor roster plus availability records for offline ranking.
type Fixture struct {
	Contractors  []models.Contractor         `json:"contractors" yaml:"contractors" validate:"required,dive"`
	Availability []models.AvailabilityRecord `json:"availability" yaml:"availability" validate:"dive"`
}

var validate = validator.New()

func loadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var f Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	if err := checkUniqueIDs(f.Contractors); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return &f, nil
}

func checkUniqueIDs(contractors []models.Contractor) error {
	seen := make(map[string]bool, len(contractors))
	for _, c := range contractors {
		if seen[c.ID] {
			return fmt.Errorf("duplicate contractor id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}
