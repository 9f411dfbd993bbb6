package dnmerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/agentstation/dnmerge/internal/export"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/constants"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
	"github.com/agentstation/dnmerge/pkg/reconciler"
	"github.com/agentstation/dnmerge/pkg/report"
	"github.com/agentstation/dnmerge/pkg/schema"
	"github.com/agentstation/dnmerge/pkg/table"
)

// Run stages, reported in RunError and logs.
const (
	StageLoad      = "load"
	StageMap       = "map"
	StageReconcile = "reconcile"
	StageCheck     = "check"
	StageAssemble  = "assemble"
)

// Runner executes reconciliation runs.
type Runner interface {
	// Run reconciles in.Primary with in.Secondary.
func (c *client) Run(ctx context.Context, in Input) (outcome *Outcome, err error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	stage := StageLoad
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("stage", stage).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Run panicked")
			outcome, err = nil, pkgerrors.NewRunError(runID, stage, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			c.hooks.triggerRunFailed(logger, runID, err)
			return
		}
		c.hooks.triggerRunCompleted(logger, outcome)
	}()

	fail := func(err error) (*Outcome, error) {
		failed := logging.WithError(logging.WithStage(ctx, stage), err)
		logging.FromContext(failed).Warn().Msg("Run failed")
		return nil, err
	}

	logger.Debug().
		Str("primary", in.Primary.Name).
		Str("secondary", in.Secondary.Name).
		Msg("Starting run")

	primary, secondary, err := c.load(logging.WithStage(ctx, stage), runID, in)
	if err != nil {
		return fail(err)
	}

	stage = StageMap
	primary = schema.DedupColumns(primary)
	if err := c.mapper.RequireKey(primary); err != nil {
		return fail(err)
	}
	if secondary, err = c.mapper.Map(secondary); err != nil {
		return fail(err)
	}

	stage = StageReconcile
	r, err := reconciler.New(c.options.reconcilerOptions()...)
	if err != nil {
		return fail(err)
	}
	result, err := r.Reconcile(logging.WithStage(ctx, stage), primary, secondary)
	if err != nil {
		return fail(err)
	}

	stage = StageCheck
	if err := ctx.Err(); err != nil {
		return fail(pkgerrors.WrapCanceled("run "+runID, err))
	}
	verdicts := c.checker.CheckTable(result.Table)

	stage = StageAssemble
	final, err := c.assembler.Assemble(result.Table, verdicts)
	if err != nil {
		return fail(err)
	}

	logger.Info().
		Int("rows", final.Summary.Total).
		Int("both", final.Summary.Both).
		Int("primary_only", final.Summary.PrimaryOnly).
		Int("secondary_only", final.Summary.SecondaryOnly).
		Int("incomplete", final.Summary.Incomplete).
		Int("warnings", len(result.Warnings)).
		Msg("Run completed")

	return &Outcome{
		RunID:    runID,
		Result:   result,
		Table:    final,
		exporter: c.exporter,
	}, nil
}

// load reads both inputs concurrently.
func (c *client) load(ctx context.Context, runID string, in Input) (*table.Dataset, *table.Dataset, error) {
	sources := [2]Source{in.Primary, in.Secondary}
	roles := [2]string{constants.PrimaryDataset, constants.SecondaryDataset}

	var (
		wg       sync.WaitGroup
		datasets [2]*table.Dataset
		errs     [2]error
	)
	for i := range sources {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = pkgerrors.NewRunError(runID, StageLoad, fmt.Errorf("panic reading %s: %v", roles[i], r))
				}
			}()

			name := sources[i].Name
			if name == "" {
				name = roles[i]
			}
			lctx := logging.WithDataset(ctx, roles[i])
			datasets[i], errs[i] = c.loader.Load(lctx, name, sources[i].Reader, sources[i].Format)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs[0], errs[1]); err != nil {
		return nil, nil, err
	}
	return datasets[0], datasets[1], nil
}
