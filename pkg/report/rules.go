package report

import (
	"strings"

	"github.com/agentstation/dnmerge/pkg/cell"
)

// Rule highlights rows whose Column contains the Contains text.
// Colors are RGB hex without the leading '#'.
type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Column   string `yaml:"column" json:"column"`
	Contains string `yaml:"contains" json:"contains"`
	Fill     string `yaml:"fill" json:"fill"`
	Font     string `yaml:"font" json:"font"`
}

// Highlight colors of the default rules.
const (
	GreenFill = "C6EFCE"
	GreenFont = "006100"
	RedFill   = "FFC7CE"
	RedFont   = "9C0006"
)

// DefaultRules marks added rows green and rows with missing data red.
// Status rules match the full origin labels of l.
func DefaultRules(l Labels) []Rule {
	return []Rule{
		{Name: "added", Column: l.StatusColumn, Contains: l.SecondaryOnly, Fill: GreenFill, Font: GreenFont},
		{Name: "missing", Column: l.StatusColumn, Contains: l.PrimaryOnly, Fill: RedFill, Font: RedFont},
		{Name: "incomplete", Column: l.VerdictColumn, Contains: strings.TrimSpace(l.Verdict.MissingPrefix), Fill: RedFill, Font: RedFont},
	}
}

// Matches reports whether the rule applies to a cell value.
func (r Rule) Matches(v cell.Value) bool {
	return r.Contains != "" && strings.Contains(v.String(), r.Contains)
}
