// internal/transform/brand/tables.go
package brand

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var defaultTablesYAML []byte

// Tables holds the brand reference data driving canonicalization.
type Tables struct {
	Version         int               `yaml:"version"`
	ParentCompanies []string          `yaml:"parent_companies"`
	GenericTerms    []string          `yaml:"generic_terms"`
	DefaultPriority int               `yaml:"default_priority"`
	Priorities      map[string]int    `yaml:"priorities"`
	DisplayForms    map[string]string `yaml:"display_forms"`
	CanonicalMap    map[string]string `yaml:"canonical_mappings"`

	parentSet  map[string]struct{}
	genericSet map[string]struct{}
}

// DefaultTables loads the tables compiled into the binary.
func DefaultTables() (*Tables, error) {
	return parseTables(defaultTablesYAML)
}

// LoadTables reads tables from a YAML file, falling back to the embedded
// defaults when path is empty.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand tables %s: %w", path, err)
	}
	return parseTables(data)
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse brand tables: %w", err)
	}
	if t.DefaultPriority == 0 {
		t.DefaultPriority = 50
	}
	if len(t.ParentCompanies) == 0 {
		return nil, fmt.Errorf("brand tables: parent_companies is empty")
	}

	t.parentSet = make(map[string]struct{}, len(t.ParentCompanies))
	for _, p := range t.ParentCompanies {
		t.parentSet[p] = struct{}{}
	}
	t.genericSet = make(map[string]struct{}, len(t.GenericTerms))
	for _, g := range t.GenericTerms {
		t.genericSet[g] = struct{}{}
	}

	return &t, nil
}

func (t *Tables) isParentCompany(lower string) bool {
	_, ok := t.parentSet[lower]
	return ok
}

func (t *Tables) isGenericTerm(lower string) bool {
	_, ok := t.genericSet[lower]
	return ok
}

func (t *Tables) priorityFor(lower string) int {
	if p, ok := t.Priorities[lower]; ok {
		return p
	}
	return t.DefaultPriority
}
