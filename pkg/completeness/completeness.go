// Package completeness decides whether a merged row carries every required field.
package completeness

import (
	"strings"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/reconciler"
)

// DefaultPlaceholders are text values treated as missing. They are what
// null cells turn into when a spreadsheet round-trips through text.
var DefaultPlaceholders = []string{"nan", "none", "null", "<na>", "nat"}

// Labels render verdicts for people.
type Labels struct {
	Complete      string `yaml:"complete" json:"complete"`
	MissingPrefix string `yaml:"missingPrefix" json:"missingPrefix"`
	Separator     string `yaml:"separator" json:"separator"`
}

// DefaultLabels returns the Czech labels used in exported reports.
func DefaultLabels() Labels {
	return Labels{
		Complete:      "Kompletní",
		MissingPrefix: "Chybí: ",
		Separator:     ", ",
	}
}

// Render returns the label of v.
func (l Labels) Render(v Verdict) string {
	if v.Complete {
		return l.Complete
	}
	return l.MissingPrefix + strings.Join(v.Missing, l.Separator)
}

// Verdict is the completeness classification of one row.
type Verdict struct {
	Complete bool     `json:"complete" yaml:"complete"`
	Missing  []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Label renders v with the default labels.
func (v Verdict) Label() string {
	return DefaultLabels().Render(v)
}

// Checker evaluates rows against a list of required fields.
type Checker struct {
	required     []string
	placeholders map[string]bool
}

// Option configures a Checker.
type Option func(*Checker) error

// WithPlaceholders replaces the text values treated as missing.
// Matching is case-insensitive and ignores surrounding whitespace.
func WithPlaceholders(values ...string) Option {
	return func(c *Checker) error {
		c.placeholders = make(map[string]bool, len(values))
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				return &errors.ValidationError{Field: "placeholders", Message: "placeholder cannot be empty"}
			}
			c.placeholders[v] = true
		}
		return nil
	}
}

// New creates a Checker for the required fields, in the order given.
func New(required []string, opts ...Option) (*Checker, error) {
	c := &Checker{required: append([]string(nil), required...)}
	if err := WithPlaceholders(DefaultPlaceholders...)(c); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Required returns the required fields.
func (c *Checker) Required() []string {
	return append([]string(nil), c.required...)
}

// Check classifies values. Missing fields are listed in required order.
func (c *Checker) Check(values map[string]cell.Value) Verdict {
	var missing []string
	for _, field := range c.required {
		v, ok := values[field]
		if !ok || c.IsMissing(v) {
			missing = append(missing, field)
		}
	}
	return Verdict{Complete: len(missing) == 0, Missing: missing}
}

// CheckTable classifies every row of t, aligned with t.Rows.
func (c *Checker) CheckTable(t *reconciler.Table) []Verdict {
	verdicts := make([]Verdict, len(t.Rows))
	for i := range t.Rows {
		verdicts[i] = c.Check(t.Rows[i].Values)
	}
	return verdicts
}

// IsMissing reports whether v counts as absent.
func (c *Checker) IsMissing(v cell.Value) bool {
	if v.IsBlank() {
		return true
	}
	if v.Kind() != cell.KindText {
		return false
	}
	return c.placeholders[strings.ToLower(strings.TrimSpace(v.String()))]
}
