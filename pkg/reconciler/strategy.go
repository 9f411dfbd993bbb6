package reconciler

import (
	"fmt"
	"strings"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/provenance"
)

// StrategyType represents the type of reconciliation strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyTypeSourceOrder uses source ordering to resolve conflicts.
	StrategyTypeSourceOrder StrategyType = "source-order"
)

// Strategy defines how the value of a field present in both datasets is chosen.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// ResolveConflict picks the value for field from the per-source values
	// and returns the chosen value, its source, and the reason.
	ResolveConflict(field string, values map[provenance.Source]cell.Value) (cell.Value, provenance.Source, string)

	// ValidateResult validates the reconciliation result
	ValidateResult(result *Result) error
}

// baseStrategy provides common strategy functionality.
type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// ValidateResult checks the merged table for structural violations.
func (s *baseStrategy) ValidateResult(result *Result) error {
	if result == nil || result.Table == nil {
		return &errors.ValidationError{
			Field:   "result",
			Message: "cannot be nil",
		}
	}
	if v := ValidateTable(result.Table); !v.IsValid() {
		return &errors.ValidationError{
			Field:   "table",
			Message: v.Errors[0].Message,
		}
	}
	return nil
}

// SourceOrderStrategy resolves conflicts using a fixed source precedence order.
// Sources earlier in the priority slice have higher precedence than sources later in the slice.
type SourceOrderStrategy struct {
	baseStrategy
	sourcePriorityOrder []provenance.Source // First element = highest priority
}

// NewSourceOrderStrategy creates a new source priority order strategy.
func NewSourceOrderStrategy(priorityOrder []provenance.Source) Strategy {
	return &SourceOrderStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeSourceOrder,
			description: fmt.Sprintf("Resolves conflicts using source priority order: %v", priorityOrder),
		},
		sourcePriorityOrder: priorityOrder,
	}
}

// NewPrimaryFirstStrategy keeps every non-blank primary value and fills
// blank ones from the secondary dataset.
func NewPrimaryFirstStrategy() Strategy {
	return NewSourceOrderStrategy([]provenance.Source{provenance.Primary, provenance.Secondary})
}

// ResolveConflict uses source priority order to resolve conflicts.
func (s *SourceOrderStrategy) ResolveConflict(_ string, values map[provenance.Source]cell.Value) (cell.Value, provenance.Source, string) {
	for _, source := range s.sourcePriorityOrder {
		if value, exists := values[source]; exists && !value.IsBlank() {
			return value, source, fmt.Sprintf("selected by source priority order (%s)", source)
		}
	}

	// No source had a value; keep the highest priority source's blank.
	for _, source := range s.sourcePriorityOrder {
		if value, exists := values[source]; exists {
			return value, source, "no source has a value"
		}
	}

	return cell.Empty(), "", "no value available"
}
