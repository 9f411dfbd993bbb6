package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentstation/dnmerge/pkg/errors"
)

// Format identifies the encoding of an input file.
type Format string

const (
	// FormatAuto detects the format from the file name.
	FormatAuto Format = ""
	// FormatCSV is comma separated text.
	FormatCSV Format = "csv"
	// FormatXLSX is an Office Open XML workbook.
	FormatXLSX Format = "xlsx"
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatAuto {
		return "auto"
	}
	return string(f)
}

// Detect returns the format implied by a file name. Names ending in .csv
// are CSV, everything else is read as a workbook.
func Detect(filename string) Format {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// ParseFormat parses a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "xls", "xlsm":
		return FormatXLSX, nil
	default:
		return FormatAuto, &errors.ValidationError{
			Field:   "format",
			Value:   s,
			Message: fmt.Sprintf("unsupported format (use %s or %s)", FormatCSV, FormatXLSX),
		}
	}
}

// Resolve returns f, or the format detected from filename when f is FormatAuto.
func (f Format) Resolve(filename string) Format {
	if f == FormatAuto {
		return Detect(filename)
	}
	return f
}
