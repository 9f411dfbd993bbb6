// Package schema holds the canonical column vocabulary and maps the headers
// of an input dataset onto it.
package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/dnmerge/pkg/errors"
)

// Rule renames one source column to a canonical column.
type Rule struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Mapping is an ordered list of rename rules.
type Mapping []Rule

// Config is the canonical schema used by a reconciliation run.
type Config struct {
	// KeyColumn is the canonical identifier column.
	KeyColumn string `yaml:"keyColumn" json:"keyColumn"`

	// KeyAliases are alternative names of the key column, tried in order.
	KeyAliases []string `yaml:"keyAliases" json:"keyAliases"`

	// ColumnMapping renames secondary columns to canonical names.
	ColumnMapping Mapping `yaml:"columnMapping" json:"columnMapping"`

	// RequiredFields must be present and non-blank for a row to be complete.
	RequiredFields []string `yaml:"requiredFields" json:"requiredFields"`
}

// Default returns the delivery report schema.
func Default() *Config {
	return &Config{
		KeyColumn:  "DN NUMBER (SAP)",
		KeyAliases: []string{"Zakázka (Delivery)"},
		ColumnMapping: Mapping{
			{From: "Material(cz)", To: "Material"},
			{From: "Materiál", To: "Material"},
			{From: "Počet kusů", To: "Number of pieces"},
			{From: "Hmotnost (kg)", To: "Weight (kg)"},
			{From: "Zákazník", To: "Customer"},
			{From: "Dopravce", To: "Carrier"},
			{From: "Datum dodání", To: "Delivery date"},
			{From: "Místo dodání", To: "Delivery place"},
			{From: "Poznámka", To: "Note"},
		},
		RequiredFields: []string{"Material", "Number of pieces", "Weight (kg)"},
	}
}

// Load reads a schema file. Fields omitted in the file keep their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a YAML schema from r on top of the defaults and validates it.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the schema is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeyColumn) == "" {
		return &errors.ValidationError{Field: "keyColumn", Message: "cannot be empty"}
	}

	key := fold(c.KeyColumn)
	for _, alias := range c.KeyAliases {
		if strings.TrimSpace(alias) == "" {
			return &errors.ValidationError{Field: "keyAliases", Message: "alias cannot be empty"}
		}
		if fold(alias) == key {
			return &errors.ValidationError{Field: "keyAliases", Value: alias, Message: "alias repeats the key column"}
		}
	}

	seen := make(map[string]bool, len(c.ColumnMapping))
	for i, rule := range c.ColumnMapping {
		field := fmt.Sprintf("columnMapping[%d]", i)
		if strings.TrimSpace(rule.From) == "" || strings.TrimSpace(rule.To) == "" {
			return &errors.ValidationError{Field: field, Value: rule, Message: "from and to are required"}
		}
		if fold(rule.From) == key || fold(rule.To) == key {
			return &errors.ValidationError{Field: field, Value: rule, Message: "key column cannot be remapped, use keyAliases"}
		}
		if seen[fold(rule.From)] {
			return &errors.ValidationError{Field: field, Value: rule.From, Message: "duplicate source column"}
		}
		seen[fold(rule.From)] = true
	}

	for _, f := range c.RequiredFields {
		if strings.TrimSpace(f) == "" {
			return &errors.ValidationError{Field: "requiredFields", Message: "field name cannot be empty"}
		}
	}
	return nil
}

// Targets returns the canonical names the mapping produces, in first-seen order.
func (c *Config) Targets() []string {
	var out []string
	seen := make(map[string]bool)
	for _, rule := range c.ColumnMapping {
		if !seen[rule.To] {
			seen[rule.To] = true
			out = append(out, rule.To)
		}
	}
	return out
}

// Encode writes the schema as YAML.
func (c *Config) Encode(w io.Writer) error {
	data, err := yaml.MarshalWithOptions(c, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	_, err = w.Write(data)
	return err
}
