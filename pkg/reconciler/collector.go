package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge/pkg/cell"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/keys"
	"github.com/agentstation/dnmerge/pkg/table"
)

// entry is one surviving row of a dataset after key normalization.
type entry struct {
	key       keys.Key
	row       int
	synthetic bool
}

// index is a dataset keyed by normalized key, one entry per key.
type index struct {
	dataset   *table.Dataset
	positions map[string]int // column -> first position
	entries   []entry        // surviving rows in dataset order
	byKey     map[keys.Key]int
}

// value returns the value of column for the row of entry e.
func (ix *index) value(e entry, column string) (cell.Value, bool) {
	pos, ok := ix.positions[column]
	if !ok {
		return cell.Empty(), false
	}
	return ix.dataset.Cell(e.row, pos), true
}

// lookup returns the entry with the given key.
func (ix *index) lookup(key keys.Key) (entry, bool) {
	i, ok := ix.byKey[key]
	if !ok {
		return entry{}, false
	}
	return ix.entries[i], true
}

// collector encapsulates key extraction and per-dataset deduplication.
type collector struct {
	keyColumn string
	logger    *zerolog.Logger
}

// newCollector creates a new collector for the given key column.
func newCollector(keyColumn string, logger *zerolog.Logger) *collector {
	return &collector{
		keyColumn: keyColumn,
		logger:    logger,
	}
}

// collect normalizes the keys of ds and keeps the last row of each key.
// Blank keys receive a generated key and never join with another row.
func (c *collector) collect(ds *table.Dataset) (*index, []Warning, error) {
	keyPos := ds.Index(c.keyColumn)
	if keyPos < 0 {
		return nil, nil, errors.NewMissingKeyColumnError(ds.Name, c.keyColumn, nil)
	}

	var warnings []Warning
	rowKeys := make([]entry, len(ds.Rows))
	last := make(map[keys.Key]int, len(ds.Rows))

	for i := range ds.Rows {
		key := keys.FromCell(ds.Cell(i, keyPos))
		e := entry{key: key, row: i}
		if key.IsEmpty() {
			e.key = keys.NewSynthetic()
			e.synthetic = true
			warnings = append(warnings, Warning{
				Kind:    WarningMalformedKey,
				Dataset: ds.Name,
				Row:     i + 1,
				Key:     e.key,
				Message: "blank key replaced with " + e.key.String(),
			})
		}
		rowKeys[i] = e
		last[e.key] = i
	}

	ix := &index{
		dataset:   ds,
		positions: make(map[string]int, len(ds.Columns)),
		entries:   make([]entry, 0, len(last)),
		byKey:     make(map[keys.Key]int, len(last)),
	}
	for i, col := range ds.Columns {
		if _, ok := ix.positions[col]; !ok {
			ix.positions[col] = i
		}
	}

	for i, e := range rowKeys {
		if last[e.key] != i {
			warnings = append(warnings, Warning{
				Kind:    WarningDuplicateKey,
				Dataset: ds.Name,
				Row:     i + 1,
				Key:     e.key,
				Message: "duplicate key " + e.key.String() + " superseded by a later row",
			})
			continue
		}
		ix.byKey[e.key] = len(ix.entries)
		ix.entries = append(ix.entries, e)
	}

	c.logger.Debug().
		Str("dataset", ds.Name).
		Int("rows", len(ds.Rows)).
		Int("keys", len(ix.entries)).
		Int("warnings", len(warnings)).
		Msg("Collected dataset keys")

	return ix, warnings, nil
}
