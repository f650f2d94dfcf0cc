// Package pipeline runs extract, transform, load and the report queries
// in strict sequence.
package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/extract"
	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/progress"
	"github.com/banketl/banketl/internal/query"
	"github.com/banketl/banketl/internal/rates"
	"github.com/banketl/banketl/internal/sink"
	"github.com/banketl/banketl/internal/transform"
)

// Fetcher retrieves raw records from the source document.
type Fetcher interface {
	Extract(ctx context.Context, url string, columns []string) ([]model.Record, error)
}

// Options carries the collaborators of a run. Zero values are replaced
// with defaults.
type Options struct {
	Fetcher Fetcher
	Logger  hclog.Logger
	// Output receives each query result as it completes. Nil discards.
	Output io.Writer
}

// Report summarizes a successful run.
type Report struct {
	RunID   string
	Records []model.EnrichedRecord
	Results []*query.Result
}

// Run executes the whole pipeline for cfg. The database connection is
// closed on every path out of Run.
func Run(ctx context.Context, cfg *config.Config, opts Options) (report *Report, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fail(StageConfig, err)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = extract.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}

	runID := uuid.NewString()
	log := opts.Logger.Named("pipeline").With("run_id", runID)
	plog := progress.New(cfg.Log.ProgressPath)
	milestone := func(msg string) {
		if err := plog.Append(msg); err != nil {
			log.Warn("progress log write failed", "path", plog.Path(), "error", err)
		}
	}

	defer func() {
		if err != nil {
			log.Error("run failed", "error", err)
		}
	}()

	milestone(progress.Started)

	fetchCtx := ctx
	if cfg.Source.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, cfg.Source.Timeout)
		defer cancel()
	}
	log.Info("extracting", "url", cfg.Source.URL)
	raw, err := opts.Fetcher.Extract(fetchCtx, cfg.Source.URL, model.RawColumns)
	if err != nil {
		return nil, fail(StageExtract, err)
	}
	log.Info("extracted records", "count", len(raw))
	milestone(progress.Extracted)

	table, err := rates.Load(cfg.Rates.Path)
	if err != nil {
		return nil, fail(StageRates, err)
	}
	enriched, err := transform.Transform(raw, table)
	if err != nil {
		return nil, fail(StageTransform, err)
	}
	log.Info("transformed records", "count", len(enriched), "missing", countMissing(enriched))
	milestone(progress.Transformed)

	if err := sink.SaveCSV(cfg.Output.CSVPath, enriched); err != nil {
		return nil, fail(StageLoadFile, err)
	}
	log.Info("saved csv", "path", cfg.Output.CSVPath)
	milestone(progress.SavedFile)

	store, err := sink.Open(ctx, cfg.Output.DBPath)
	if err != nil {
		return nil, fail(StageConnect, err)
	}
	defer func() {
		if store == nil {
			return
		}
		if cerr := store.Close(); cerr != nil {
			log.Warn("closing database", "error", cerr)
		}
	}()
	milestone(progress.ConnectionOpened)

	if err := store.WriteTable(ctx, cfg.Output.Table, enriched); err != nil {
		return nil, fail(StageLoadTable, err)
	}
	log.Info("loaded table", "db", cfg.Output.DBPath, "table", cfg.Output.Table)
	milestone(progress.LoadedTable)

	results, err := runQueries(ctx, store, cfg.Output.Table, opts.Output, log)
	if err != nil {
		return nil, fail(StageQuery, err)
	}
	milestone(progress.QueriesDone)

	closeErr := store.Close()
	store = nil
	if closeErr != nil {
		return nil, fail(StageClose, closeErr)
	}
	milestone(progress.ConnectionClosed)

	return &Report{RunID: runID, Records: enriched, Results: results}, nil
}

// Query runs the report queries against an existing store without
// touching the sinks.
func Query(ctx context.Context, cfg *config.Config, out io.Writer, logger hclog.Logger) ([]*query.Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if out == nil {
		out = io.Discard
	}
	if _, err := os.Stat(cfg.Output.DBPath); err != nil {
		return nil, fail(StageConnect, err)
	}
	store, err := sink.Open(ctx, cfg.Output.DBPath)
	if err != nil {
		return nil, fail(StageConnect, err)
	}
	defer store.Close()

	results, err := runQueries(ctx, store, cfg.Output.Table, out, logger.Named("query"))
	if err != nil {
		return nil, fail(StageQuery, err)
	}
	return results, nil
}

func runQueries(ctx context.Context, store *sink.Store, table string, out io.Writer, log hclog.Logger) ([]*query.Result, error) {
	stmts, err := query.Statements(table)
	if err != nil {
		return nil, err
	}
	results, err := query.RunAll(ctx, store.Conn(), stmts)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		log.Debug("query complete", "statement", res.Statement, "rows", len(res.Rows))
		if err := res.Print(out); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func countMissing(records []model.EnrichedRecord) int {
	n := 0
	for _, r := range records {
		if r.MarketCapUSD.IsMissing() {
			n++
		}
	}
	return n
}
