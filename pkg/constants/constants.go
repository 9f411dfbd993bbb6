// Package constants provides shared constants used throughout dnmerge.
// This includes timeouts, limits, file names, and permissions that
// should be consistent across the CLI and the HTTP service.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// CommandTimeout is the default timeout for a CLI reconciliation run
	CommandTimeout = 10 * time.Minute

	// DefaultReadTimeout is the HTTP server read timeout
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the HTTP server write timeout
	DefaultWriteTimeout = 2 * time.Minute

	// DefaultIdleTimeout is the HTTP server idle timeout
	DefaultIdleTimeout = 2 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxUploadSize caps a single multipart upload (both files together)
	MaxUploadSize = 64 << 20

	// MaxMultipartMemory is the in-memory part of a parsed multipart form
	MaxMultipartMemory = 32 << 20

	// PreviewRows is the number of incomplete rows shown after a run
	PreviewRows = 50

	// XLSXHighlightRows is the last row covered by conditional formatting
	XLSXHighlightRows = 99999
)

// Naming constants used for inputs and outputs
const (
	// PrimaryDataset is the name given to the authoritative dataset
	PrimaryDataset = "primary"

	// SecondaryDataset is the name given to the backfill dataset
	SecondaryDataset = "secondary"

	// DefaultOutputFile is the default export file name
	DefaultOutputFile = "reconciliation_result.xlsx"

	// DefaultSheetName is the sheet written by the exporter
	DefaultSheetName = "Porovnani"

	// XLSXContentType is the MIME type of an exported workbook
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
