package ratetable

import (
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type tierDoc struct {
	Min  float64  `yaml:"min" json:"min"`
	Max  *float64 `yaml:"max" json:"max"`
	Rate float64  `yaml:"rate" json:"rate"`
}

// UnmarshalYAML treats a missing or null max as the open-ended top band.
func (t *Tier) UnmarshalYAML(node *yaml.Node) error {
	var doc tierDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	t.Min = doc.Min
	t.Rate = doc.Rate
	t.Max = math.Inf(1)
	if doc.Max != nil {
		t.Max = *doc.Max
	}
	return nil
}

func (t Tier) MarshalYAML() (any, error) {
	return t.doc(), nil
}

// MarshalJSON renders an unbounded max as null; JSON has no infinity.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.doc())
}

func (t Tier) doc() tierDoc {
	doc := tierDoc{Min: t.Min, Rate: t.Rate}
	if !t.Unbounded() {
		max := t.Max
		doc.Max = &max
	}
	return doc
}

// Parse decodes a YAML rate table document and validates it.
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidTable, err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table %s: %w", path, err)
	}
	return Parse(data)
}

// Encode renders the table back to its YAML document form.
func Encode(table *Table) ([]byte, error) {
	return yaml.Marshal(table)
}
