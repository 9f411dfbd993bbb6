package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/table"
)

// Mapper renames the columns of a dataset onto the canonical schema.
type Mapper struct {
	config  *Config
	renames map[string]string
}

// NewMapper validates cfg and builds a Mapper for it.
func NewMapper(cfg *Config) (*Mapper, error) {
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renames := make(map[string]string, len(cfg.ColumnMapping))
	for _, rule := range cfg.ColumnMapping {
		renames[fold(rule.From)] = rule.To
	}
	return &Mapper{config: cfg, renames: renames}, nil
}

// Config returns the schema the mapper applies.
func (m *Mapper) Config() *Config {
	return m.config
}

// Map returns a copy of ds with unique columns, the key column resolved from
// its aliases, and mapped columns renamed. Unmapped columns pass through.
// The input dataset is not modified.
func (m *Mapper) Map(ds *table.Dataset) (*table.Dataset, error) {
	out := DedupColumns(ds)

	if !out.Has(m.config.KeyColumn) {
		if i := m.aliasIndex(out); i >= 0 {
			out.Columns[i] = m.config.KeyColumn
		}
	}

	for i, c := range out.Columns {
		if c == m.config.KeyColumn {
			continue
		}
		if to, ok := m.renames[fold(c)]; ok {
			out.Columns[i] = to
		}
	}

	out = DedupColumns(out)
	if err := m.requireKey(out, m.config.KeyAliases); err != nil {
		return nil, err
	}
	return out, nil
}

// RequireKey returns a MissingKeyColumnError when ds lacks the key column.
// Aliases are not consulted.
func (m *Mapper) RequireKey(ds *table.Dataset) error {
	return m.requireKey(ds, nil)
}

func (m *Mapper) requireKey(ds *table.Dataset, tried []string) error {
	if ds.Has(m.config.KeyColumn) {
		return nil
	}
	return errors.NewMissingKeyColumnError(ds.Name, m.config.KeyColumn, tried)
}

// aliasIndex returns the position of the first configured alias present in ds.
func (m *Mapper) aliasIndex(ds *table.Dataset) int {
	for _, alias := range m.config.KeyAliases {
		want := fold(alias)
		for i, c := range ds.Columns {
			if fold(c) == want {
				return i
			}
		}
	}
	return -1
}

// DedupColumns returns a copy of ds keeping the first occurrence of each column name.
func DedupColumns(ds *table.Dataset) *table.Dataset {
	positions := make([]int, 0, len(ds.Columns))
	seen := make(map[string]bool, len(ds.Columns))
	for i, c := range ds.Columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		positions = append(positions, i)
	}
	return ds.Project(positions)
}

// fold canonicalizes a header for comparison. Spreadsheets exported on
// different platforms disagree on Unicode composition of accented letters.
func fold(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
