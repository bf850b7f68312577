package stats

// driver.go — the batch driver.
//
// Input resolution is deterministic: benchmark names in the order supplied,
// then the explicit file, then the directory's recognized entries in name
// order. Benchmark names are validated up front; an unknown name is a
// configuration error and nothing is processed. After resolution each item
// is processed in isolation: a parse, build or derive failure is logged and
// captured while the run continues, and the driver reports the collected
// failures at the end. Only a report-stream failure aborts mid-run.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kbstats/internal/fm/parser"
	"kbstats/internal/kb"
)

// Config selects the inputs of one run. Every category is optional and
// independently enabled.
type Config struct {
	// Benchmarks are knowledge base names (PC, Renault, Camera), processed
	// in the order given.
	Benchmarks []string
	// FMFile is a single feature model file.
	FMFile string
	// FMDir is a directory whose recognized feature model files are all
	// processed; other entries are skipped silently.
	FMDir string
}

// RunError aggregates the inputs skipped during an otherwise completed run.
// The report holds every record that succeeded; callers distinguish it from
// a configuration or write abort, which stops the run outright.
type RunError struct {
	// Failed lists the labels of the skipped inputs, in processing order.
	Failed []string
	// Total is the number of resolved inputs.
	Total int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%d of %d inputs failed: %s", len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

// Driver runs one batch of knowledge bases through derivation and reporting.
type Driver struct {
	cfg Config
	log *slog.Logger
}

// NewDriver returns a driver for cfg. A nil logger falls back to the default.
func NewDriver(cfg Config, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{cfg: cfg, log: log}
}

// item is one resolved input: either a benchmark kind or a file path.
type item struct {
	kind kb.Kind
	path string
}

func (it item) label() string {
	if it.path != "" {
		return filepath.Base(it.path)
	}
	return string(it.kind)
}

// resolve expands the configuration into the ordered list of inputs.
func (d *Driver) resolve() ([]item, error) {
	var items []item

	for _, name := range d.cfg.Benchmarks {
		kind, err := kb.KindOf(name)
		if err != nil {
			return nil, err
		}
		items = append(items, item{kind: kind})
	}

	if d.cfg.FMFile != "" {
		items = append(items, item{path: d.cfg.FMFile})
	}

	if d.cfg.FMDir != "" {
		// os.ReadDir sorts entries by name, which keeps report indices
		// reproducible across file systems.
		entries, err := os.ReadDir(d.cfg.FMDir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", d.cfg.FMDir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !parser.IsRecognized(e.Name()) {
				continue
			}
			items = append(items, item{path: filepath.Join(d.cfg.FMDir, e.Name())})
		}
	}
	return items, nil
}

// Run resolves the inputs, derives statistics for each, and appends the
// records to w. Items that fail to parse, build or solve are skipped with a
// warning and collected into a *RunError; a write failure aborts
// immediately.
func (d *Driver) Run(w *Writer) error {
	items, err := d.resolve()
	if err != nil {
		return err
	}

	index := 0
	var failed []string
	for _, it := range items {
		d.log.Info("calculating statistics", "input", it.label())

		rec, err := d.process(it)
		if err != nil {
			d.log.Warn("skipping input", "input", it.label(), "err", err)
			failed = append(failed, it.label())
			continue
		}

		index++
		rec.Index = index
		if err := w.Append(rec); err != nil {
			return err
		}
		d.log.Info("done", "input", it.label())
	}

	if len(failed) > 0 {
		return &RunError{Failed: failed, Total: len(items)}
	}
	return nil
}

// process builds the canonical model for one input and derives its record.
// The record's index is assigned by the caller once the item succeeds.
func (d *Driver) process(it item) (Record, error) {
	if it.path == "" {
		base, err := kb.Benchmark(it.kind)
		if err != nil {
			return Record{}, err
		}
		built, err := base.Build()
		if err != nil {
			return Record{}, err
		}
		return Base(built)
	}

	m, err := parser.ParseFile(it.path)
	if err != nil {
		return Record{}, err
	}
	base, err := kb.FromFeatureModel(m, filepath.Base(it.path))
	if err != nil {
		return Record{}, err
	}
	built, err := base.Build()
	if err != nil {
		return Record{}, err
	}
	return ForFeatureModel(m, built)
}
