// Package ingest loads delimited text and workbooks into datasets.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
	"github.com/agentstation/dnmerge/pkg/table"
)

// checkEvery is how many rows are read between cancellation checks.
const checkEvery = 1024

// Option configures a Loader.
type Option func(*options) error

type options struct {
	comma      rune
	lazyQuotes bool
	sheet      string
}

func defaultOptions() *options {
	return &options{comma: ','}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithComma sets the CSV field delimiter.
func WithComma(r rune) Option {
	return func(o *options) error {
		if r == 0 || r == '"' || r == '\r' || r == '\n' {
			return &errors.ValidationError{Field: "comma", Value: string(r), Message: "invalid delimiter"}
		}
		o.comma = r
		return nil
	}
}

// WithLazyQuotes allows quotes to appear in unquoted CSV fields.
func WithLazyQuotes(lazy bool) Option {
	return func(o *options) error {
		o.lazyQuotes = lazy
		return nil
	}
}

// WithSheet selects a workbook sheet by name instead of the first one.
func WithSheet(name string) Option {
	return func(o *options) error {
		o.sheet = strings.TrimSpace(name)
		return nil
	}
}

// Loader reads datasets.
type Loader struct {
	opts *options
}

// New creates a Loader.
func New(opts ...Option) (*Loader, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Loader{opts: o}, nil
}

// Load reads r as format and returns a dataset called name. FormatAuto
// detects the format from name. Header names are trimmed; empty headers
// become "Unnamed: <position>". Fully blank rows are skipped.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader, format Format) (*table.Dataset, error) {
	if r == nil {
		return nil, errors.NewUnreadableInputError(name, format.String(), fmt.Errorf("no data"))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("read "+name, err)
	}

	format = format.Resolve(name)
	logger := logging.FromContext(ctx).With().
		Str("dataset", name).
		Str("format", format.String()).
		Logger()

	var (
		ds  *table.Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = l.readCSV(ctx, name, r)
	case FormatXLSX:
		ds, err = l.readXLSX(ctx, name, r)
	default:
		err = errors.NewUnreadableInputError(name, format.String(), fmt.Errorf("unsupported format"))
	}
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to load input")
		return nil, err
	}

	logger.Debug().
		Int("columns", len(ds.Columns)).
		Int("rows", ds.Len()).
		Msg("Loaded input")
	return ds, nil
}

func headers(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = h
	}
	return out
}
