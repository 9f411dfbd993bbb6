// Package reconciler merges a primary and a secondary dataset into one table
// with exactly one row per normalized key. Blank primary values are
// backfilled from the secondary dataset; non-blank primary values are kept.
package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
	"github.com/agentstation/dnmerge/pkg/provenance"
	"github.com/agentstation/dnmerge/pkg/table"
)

// Reconciler is the main interface for reconciling two datasets.
type Reconciler interface {
	// Reconcile performs a full outer join of primary and secondary on the
	// key column. Either the whole result is returned or an error.
	Reconcile(ctx context.Context, primary, secondary *table.Dataset) (*Result, error)

	// KeyColumn returns the column both datasets are joined on.
	KeyColumn() string
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	keyColumn string
	strategy  Strategy
	tracking  bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		keyColumn: options.keyColumn,
		strategy:  options.strategy,
		tracking:  options.tracking,
	}, nil
}

// KeyColumn returns the join column.
func (r *reconciler) KeyColumn() string {
	return r.keyColumn
}

// reconcileContext holds state shared by the steps of one run.
type reconcileContext struct {
	primary   *index
	secondary *index
	merger    *merger
	tracker   provenance.Tracker
	logger    *zerolog.Logger
	result    *Result
}

// Reconcile performs reconciliation with a clean step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, primary, secondary *table.Dataset) (*Result, error) {
	// Step 1: Validate inputs and index both datasets by key
	rctx, err := r.initialize(ctx, primary, secondary)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("reconcile", err)
	}

	// Step 2: Join on key
	rows := r.join(rctx)

	// Step 3: Build and validate the result
	result := rctx.result
	result.Table = &Table{
		KeyColumn: r.keyColumn,
		Columns:   rctx.merger.columns,
		Rows:      rows,
	}
	result.Provenance = rctx.tracker.Map()
	r.stats(result)

	if err := r.strategy.ValidateResult(result); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("reconcile", err)
	}

	result.Finalize()

	rctx.logger.Info().
		Int("rows", result.Table.Len()).
		Int("both", result.Metadata.Stats.Both).
		Int("primary_only", result.Metadata.Stats.PrimaryOnly).
		Int("secondary_only", result.Metadata.Stats.SecondaryOnly).
		Int("backfilled", result.Metadata.Stats.BackfilledCells).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation completed")

	return result, nil
}

// initialize sets up the reconciliation context.
func (r *reconciler) initialize(ctx context.Context, primary, secondary *table.Dataset) (*reconcileContext, error) {
	if primary == nil || secondary == nil {
		return nil, &errors.ValidationError{
			Field:   "datasets",
			Message: "primary and secondary datasets are required",
		}
	}

	logger := logging.FromContext(ctx).With().
		Str("strategy", r.strategy.Type().String()).
		Str("key_column", r.keyColumn).
		Logger()

	result := NewResult()
	result.Metadata.Datasets = []string{primary.Name, secondary.Name}
	result.Metadata.Strategy = r.strategy

	col := newCollector(r.keyColumn, &logger)

	pidx, pwarn, err := col.collect(primary)
	if err != nil {
		return nil, err
	}
	sidx, swarn, err := col.collect(secondary)
	if err != nil {
		return nil, err
	}

	result.Warnings = append(result.Warnings, pwarn...)
	result.Warnings = append(result.Warnings, swarn...)
	for _, w := range result.Warnings {
		logger.Warn().
			Str("dataset", w.Dataset).
			Int("row", w.Row).
			Str("kind", string(w.Kind)).
			Msg(w.Message)
	}

	tracker := provenance.NewTracker(r.tracking)
	columns := canonicalColumns(r.keyColumn, primary.Columns, secondary.Columns)

	return &reconcileContext{
		primary:   pidx,
		secondary: sidx,
		merger:    newMerger(r.keyColumn, columns, r.strategy, tracker),
		tracker:   tracker,
		logger:    &logger,
		result:    result,
	}, nil
}

// join emits rows in primary order, then secondary-only rows in secondary order.
func (r *reconciler) join(rctx *reconcileContext) []Row {
	rows := make([]Row, 0, len(rctx.primary.entries)+len(rctx.secondary.entries))
	matched := make(map[int]bool, len(rctx.secondary.entries))

	for _, pe := range rctx.primary.entries {
		if !pe.synthetic {
			if se, ok := rctx.secondary.lookup(pe.key); ok {
				matched[se.row] = true
				rows = append(rows, rctx.merger.both(rctx.primary, pe, rctx.secondary, se))
				continue
			}
		}
		rows = append(rows, rctx.merger.single(rctx.primary, pe, provenance.PrimaryOnly))
	}

	for _, se := range rctx.secondary.entries {
		if matched[se.row] {
			continue
		}
		rows = append(rows, rctx.merger.single(rctx.secondary, se, provenance.SecondaryOnly))
	}

	return rows
}

// stats fills the result statistics from the merged table.
func (r *reconciler) stats(result *Result) {
	s := &result.Metadata.Stats
	counts := result.Table.Counts()
	s.Both = counts[provenance.Both]
	s.PrimaryOnly = counts[provenance.PrimaryOnly]
	s.SecondaryOnly = counts[provenance.SecondaryOnly]
	s.PrimaryRows = s.Both + s.PrimaryOnly
	s.SecondaryRows = s.Both + s.SecondaryOnly

	for i := range result.Table.Rows {
		s.BackfilledCells += len(result.Table.Rows[i].Backfilled)
	}
	s.DuplicateKeys = len(result.WarningsOf(WarningDuplicateKey))
	s.BlankKeys = len(result.WarningsOf(WarningMalformedKey))
}
