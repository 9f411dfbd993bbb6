package reconciler

import (
	"fmt"

	"github.com/agentstation/dnmerge/pkg/keys"
)

// ValidationResult represents the result of validating a merged table.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a structural violation in a merged table.
type ValidationError struct {
	Key     keys.Key
	Column  string
	Message string
}

// ValidationWarning represents a suspicious but legal condition.
type ValidationWarning struct {
	Key     keys.Key
	Column  string
	Message string
}

// IsValid returns true if validation passed.
func (v *ValidationResult) IsValid() bool {
	return v.Valid && len(v.Errors) == 0
}

// HasWarnings returns true if there are warnings.
func (v *ValidationResult) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// String returns a string representation of the validation result.
func (v *ValidationResult) String() string {
	if v.IsValid() {
		if v.HasWarnings() {
			return fmt.Sprintf("Validation passed with %d warnings", len(v.Warnings))
		}
		return "Validation passed"
	}
	return fmt.Sprintf("Validation failed with %d errors", len(v.Errors))
}

// ValidateTable checks that columns are unique with the key first, that
// every key appears once, and that rows only carry canonical columns.
func ValidateTable(t *Table) *ValidationResult {
	v := &ValidationResult{Valid: true}
	fail := func(key keys.Key, column, format string, args ...any) {
		v.Valid = false
		v.Errors = append(v.Errors, ValidationError{Key: key, Column: column, Message: fmt.Sprintf(format, args...)})
	}

	if len(t.Columns) == 0 || t.Columns[0] != t.KeyColumn {
		fail("", t.KeyColumn, "key column %q must be the first column", t.KeyColumn)
	}

	canonical := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if canonical[c] {
			fail("", c, "duplicate column %q", c)
		}
		canonical[c] = true
	}

	seen := make(map[keys.Key]bool, len(t.Rows))
	for i := range t.Rows {
		row := &t.Rows[i]
		if row.Key.IsEmpty() {
			fail("", t.KeyColumn, "row %d has an empty key", i)
		}
		if seen[row.Key] {
			fail(row.Key, t.KeyColumn, "duplicate key %q", row.Key)
		}
		seen[row.Key] = true

		if !row.Origin.IsValid() {
			fail(row.Key, "", "unknown origin %q", row.Origin)
		}
		for c := range row.Values {
			if !canonical[c] {
				fail(row.Key, c, "row %q carries non-canonical column %q", row.Key, c)
			}
		}
		if row.Synthetic {
			v.Warnings = append(v.Warnings, ValidationWarning{
				Key:     row.Key,
				Column:  t.KeyColumn,
				Message: "row has a generated key",
			})
		}
	}

	return v
}
