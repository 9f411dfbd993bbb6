// Package dnmerge reconciles a primary delivery workbook with a secondary
// shipment report. A run loads both inputs, renames the report columns onto
// the canonical schema, joins the rows on the normalized delivery number,
// fills blank primary cells from the report, checks required fields and
// assembles a highlighted comparison table.
//
// Example usage:
//
//	client, err := dnmerge.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcome, err := client.Run(ctx, dnmerge.Input{
//	    Primary:   dnmerge.Source{Name: "workbook.xlsx", Reader: primary},
//	    Secondary: dnmerge.Source{Name: "report.csv", Reader: secondary},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(outcome.Result.Summary())
//	_ = outcome.WriteXLSX(out)
package dnmerge

import (
	"github.com/agentstation/dnmerge/internal/export"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/completeness"
	"github.com/agentstation/dnmerge/pkg/report"
	"github.com/agentstation/dnmerge/pkg/schema"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client runs reconciliations and reports their outcome to hooks.
type Client interface {

	// Runner executes reconciliation runs
	Runner

	// Hooks provides access to event callback registration
	Hooks

	// Schema returns the canonical schema runs are mapped onto
	Schema() *schema.Config
}

// client is the internal implementation of the Client interface.
// Everything it holds is read-only after New, so runs may execute concurrently.
type client struct {
	options   *options
	mapper    *schema.Mapper
	checker   *completeness.Checker
	assembler *report.Assembler
	loader    *ingest.Loader
	exporter  *export.Exporter
	hooks     *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	mapper, err := schema.NewMapper(o.schema)
	if err != nil {
		return nil, err
	}
	checker, err := completeness.New(o.schema.RequiredFields, o.checkerOptions()...)
	if err != nil {
		return nil, err
	}
	assembler, err := report.New(o.labels, o.rules...)
	if err != nil {
		return nil, err
	}
	loader, err := ingest.New(o.loader...)
	if err != nil {
		return nil, err
	}
	exporter, err := export.New(o.exporter...)
	if err != nil {
		return nil, err
	}

	return &client{
		options:   o,
		mapper:    mapper,
		checker:   checker,
		assembler: assembler,
		loader:    loader,
		exporter:  exporter,
		hooks:     newHooks(),
	}, nil
}

// Schema returns the canonical schema runs are mapped onto.
func (c *client) Schema() *schema.Config {
	return c.options.schema
}

// OnRunCompleted registers a callback for successful runs.
func (c *client) OnRunCompleted(fn RunCompletedHook) {
	c.hooks.OnRunCompleted(fn)
}

// OnRunFailed registers a callback for failed runs.
func (c *client) OnRunFailed(fn RunFailedHook) {
	c.hooks.OnRunFailed(fn)
}
