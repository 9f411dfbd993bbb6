package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/dnmerge/pkg/keys"
	"github.com/agentstation/dnmerge/pkg/provenance"
)

// WarningKind classifies a non-fatal finding of a run.
type WarningKind string

const (
	// WarningMalformedKey marks a row whose key was blank and received a generated key.
	WarningMalformedKey WarningKind = "malformed-key"
	// WarningDuplicateKey marks a row dropped because a later row had the same key.
	WarningDuplicateKey WarningKind = "duplicate-key"
)

// Warning is a non-fatal finding attached to a Result.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Dataset string      `json:"dataset" yaml:"dataset"`
	Row     int         `json:"row" yaml:"row"` // 1-based data row, header excluded
	Key     keys.Key    `json:"key" yaml:"key"`
	Message string      `json:"message" yaml:"message"`
}

// String returns a human-readable warning.
func (w Warning) String() string {
	return fmt.Sprintf("%s row %d: %s", w.Dataset, w.Row, w.Message)
}

// Result represents the outcome of a reconciliation operation.
type Result struct {
	// Core data
	Table *Table

	// Metadata
	Metadata ResultMetadata

	// Provenance tracking of backfilled fields
	Provenance provenance.Map

	// Issues
	Warnings []Warning
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime utc.Time

	// EndTime when reconciliation completed
	EndTime utc.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Datasets that were reconciled, primary first
	Datasets []string

	// Strategy used for reconciliation
	Strategy Strategy

	// Statistics about the reconciliation
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	PrimaryRows     int // distinct primary keys after deduplication
	SecondaryRows   int // distinct secondary keys after deduplication
	Both            int
	PrimaryOnly     int
	SecondaryOnly   int
	BackfilledCells int
	DuplicateKeys   int
	BlankKeys       int
	TotalTimeMs     int64
}

// HasWarnings returns true if the run produced warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// WarningsOf returns the warnings of the given kind.
func (r *Result) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	summary := fmt.Sprintf("Reconciled %d rows: %d in both, %d primary only, %d secondary only, %d cells backfilled",
		s.Both+s.PrimaryOnly+s.SecondaryOnly, s.Both, s.PrimaryOnly, s.SecondaryOnly, s.BackfilledCells)
	if r.HasWarnings() {
		summary += fmt.Sprintf(" (%d warnings)", len(r.Warnings))
	}
	return summary
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Provenance: make(provenance.Map),
		Warnings:   []Warning{},
		Metadata: ResultMetadata{
			StartTime: utc.Now(),
			Datasets:  []string{},
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = utc.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
