// Package provenance records where merged rows and their field values came from.
package provenance

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Origin classifies a merged row by the datasets that contained its key.
type Origin string

const (
	// Both means the key was present in the primary and the secondary dataset.
	Both Origin = "both"
	// PrimaryOnly means the key was present only in the primary dataset.
	PrimaryOnly Origin = "primary-only"
	// SecondaryOnly means the key was present only in the secondary dataset.
	SecondaryOnly Origin = "secondary-only"
)

// Origins lists every origin in reporting order.
var Origins = []Origin{Both, PrimaryOnly, SecondaryOnly}

// String returns the origin tag.
func (o Origin) String() string {
	return string(o)
}

// IsValid reports whether o is one of the known origins.
func (o Origin) IsValid() bool {
	switch o {
	case Both, PrimaryOnly, SecondaryOnly:
		return true
	}
	return false
}

// Source identifies the dataset a value was taken from.
type Source string

const (
	// Primary is the authoritative dataset.
	Primary Source = "primary"
	// Secondary is the dataset used for backfilling.
	Secondary Source = "secondary"
)

// Provenance tracks the origin of one field value of one merged row.
type Provenance struct {
	Source        Source    // Dataset that provided the value
	Field         string    // Canonical column name
	Value         string    // Rendered value
	PreviousValue string    // Value that was replaced, if any
	Reason        string    // Why this value was selected
	Timestamp     time.Time // When the value was set
}

// Ref addresses one field of one merged row.
type Ref struct {
	Key   string
	Field string
}

// Map tracks provenance for multiple rows.
type Map map[Ref][]Provenance

// Tracker manages provenance tracking during reconciliation.
type Tracker interface {
	// Track records provenance for a field
	Track(key, field string, history Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(key, field string) []Provenance

	// FindByRow retrieves all provenance for a row, keyed by field
	FindByRow(key string) map[string][]Provenance

	// Map returns the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(key, field string, history Provenance) {
	if !p.enabled {
		return
	}

	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now().UTC()
	}
	if history.Field == "" {
		history.Field = field
	}

	ref := Ref{Key: key, Field: field}
	p.provenance[ref] = append(p.provenance[ref], history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(key, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	return p.provenance[Ref{Key: key, Field: field}]
}

// FindByRow retrieves all provenance for a row.
func (p *tracker) FindByRow(key string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}

	result := make(map[string][]Provenance)
	for ref, info := range p.provenance {
		if ref.Key == key {
			result[ref.Field] = info
		}
	}
	return result
}

// Map returns a copy of the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.provenance = make(Map)
}

// Report summarizes backfill activity across a run.
type Report struct {
	Rows    map[string]map[string]Provenance // key -> field -> latest provenance
	ByField map[string]int                   // backfilled values per field
}

// GenerateReport creates a report from a Map, keeping the latest entry per field.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		Rows:    make(map[string]map[string]Provenance),
		ByField: make(map[string]int),
	}

	for ref, infos := range provenance {
		if len(infos) == 0 {
			continue
		}
		latest := infos[0]
		for _, info := range infos[1:] {
			if info.Timestamp.After(latest.Timestamp) {
				latest = info
			}
		}

		fields, ok := report.Rows[ref.Key]
		if !ok {
			fields = make(map[string]Provenance)
			report.Rows[ref.Key] = fields
		}
		fields[ref.Field] = latest

		if latest.Source == Secondary {
			report.ByField[ref.Field]++
		}
	}

	return report
}

// Fields returns the backfilled field names sorted by count, then name.
func (r *Report) Fields() []string {
	fields := make([]string, 0, len(r.ByField))
	for f := range r.ByField {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		if r.ByField[fields[i]] != r.ByField[fields[j]] {
			return r.ByField[fields[i]] > r.ByField[fields[j]]
		}
		return fields[i] < fields[j]
	})
	return fields
}

// String generates a human-readable representation of the report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Backfill Report\n")
	sb.WriteString("===============\n\n")

	keys := make([]string, 0, len(r.Rows))
	for key := range r.Rows {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fields := r.Rows[key]
		sb.WriteString(fmt.Sprintf("%s\n", key))
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			info := fields[name]
			sb.WriteString(fmt.Sprintf("  %s: %q (from %s)\n", name, info.Value, info.Source))
			if info.Reason != "" {
				sb.WriteString(fmt.Sprintf("    Reason: %s\n", info.Reason))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
