package report

import (
	"github.com/agentstation/dnmerge/pkg/completeness"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/provenance"
)

// Labels are the human-readable texts written into a report.
type Labels struct {
	StatusColumn  string              `yaml:"statusColumn" json:"statusColumn"`
	VerdictColumn string              `yaml:"verdictColumn" json:"verdictColumn"`
	Both          string              `yaml:"both" json:"both"`
	PrimaryOnly   string              `yaml:"primaryOnly" json:"primaryOnly"`
	SecondaryOnly string              `yaml:"secondaryOnly" json:"secondaryOnly"`
	Verdict       completeness.Labels `yaml:"verdict" json:"verdict"`
}

// DefaultLabels returns the Czech labels of the delivery comparison report.
func DefaultLabels() Labels {
	return Labels{
		StatusColumn:  "Status_Dat",
		VerdictColumn: "Kontrola_Dat",
		Both:          "Kompletní (V obou)",
		PrimaryOnly:   "Pouze v Sešitu1 (Chybí v reportu)",
		SecondaryOnly: "NOVÉ (Přidáno z reportu)",
		Verdict:       completeness.DefaultLabels(),
	}
}

// Status returns the label of an origin.
func (l Labels) Status(o provenance.Origin) string {
	switch o {
	case provenance.Both:
		return l.Both
	case provenance.PrimaryOnly:
		return l.PrimaryOnly
	case provenance.SecondaryOnly:
		return l.SecondaryOnly
	default:
		return string(o)
	}
}

// Validate checks that every label is set and the two report columns differ.
func (l Labels) Validate() error {
	fields := map[string]string{
		"statusColumn":     l.StatusColumn,
		"verdictColumn":    l.VerdictColumn,
		"both":             l.Both,
		"primaryOnly":      l.PrimaryOnly,
		"secondaryOnly":    l.SecondaryOnly,
		"verdict.complete": l.Verdict.Complete,
	}
	for field, value := range fields {
		if value == "" {
			return &errors.ValidationError{Field: field, Message: "label cannot be empty"}
		}
	}
	if l.StatusColumn == l.VerdictColumn {
		return &errors.ValidationError{Field: "verdictColumn", Value: l.VerdictColumn, Message: "must differ from statusColumn"}
	}
	return nil
}
