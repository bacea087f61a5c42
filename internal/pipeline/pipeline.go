// Package pipeline orchestrates a full analysis run: extraction, fact
// write, then dependency resolution and CRUD aggregation side by side.
// Nothing in a run is fatal past the initial extraction: per-file and
// per-record failures are collected into the run report and the run
// finishes.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"javamap/internal/config"
	"javamap/internal/crud"
	"javamap/internal/extractor"
	"javamap/internal/facts"
	"javamap/internal/graph"
	"javamap/internal/graphdb"
	"javamap/internal/logger"
	"javamap/internal/resolver"
)

// Options selects what a run does beyond extraction and writing.
type Options struct {
	RootDir     string
	SkipResolve bool
	SkipCrud    bool
	Progress    extractor.ProgressReporter
}

// MatrixSummary carries the aggregate numbers of the CRUD matrix; the rows
// themselves are a query product, re-derived on demand.
type MatrixSummary struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// Report is the structured outcome of one analysis run.
type Report struct {
	RunID          string                `json:"run_id"`
	Project        string                `json:"project"`
	StartedAt      time.Time             `json:"started_at"`
	Duration       string                `json:"duration"`
	FilesSeen      int                   `json:"files_seen"`
	FilesParsed    int                   `json:"files_parsed"`
	Facts          map[facts.Kind]int    `json:"facts"`
	Beans          int                   `json:"beans"`
	Graph          graphdb.WriteSummary  `json:"graph"`
	ParseErrors    []facts.ParseError    `json:"parse_errors,omitempty"`
	MergeKeyErrors []graph.MergeKeyError `json:"merge_key_errors,omitempty"`
	Resolution     *resolver.Stats       `json:"resolution,omitempty"`
	Matrix         *MatrixSummary        `json:"matrix,omitempty"`
	Errors         []string              `json:"errors,omitempty"`
}

// WriteJSON writes the report to a file, indented.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// Pipeline wires the analysis stages against one graph store.
type Pipeline struct {
	cfg *config.Config
	db  graphdb.Querier
	log *logger.Logger
}

func New(cfg *config.Config, db graphdb.Querier, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		db:  db,
		log: log.With("component", "pipeline"),
	}
}

// Run executes extraction, the batch fact write, and then resolution and
// CRUD aggregation concurrently. The two derivation stages are independent:
// one failing is recorded in the report and never stops the other.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	started := time.Now()
	project := p.cfg.Project.Name
	report := &Report{
		RunID:     uuid.NewString(),
		Project:   project,
		StartedAt: started,
	}
	p.log.Info("analysis started", "run_id", report.RunID, "project", project, "root", opts.RootDir)

	ext, err := extractor.New(extractor.Options{
		Project:  project,
		RootDir:  opts.RootDir,
		Include:  p.cfg.Paths.Include,
		Exclude:  p.cfg.Paths.Exclude,
		Workers:  p.cfg.Analysis.Workers,
		Progress: opts.Progress,
	}, p.log)
	if err != nil {
		return nil, err
	}
	res, err := ext.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	report.FilesSeen = res.FilesSeen
	report.FilesParsed = res.FilesParsed
	report.ParseErrors = res.ParseErrors

	graph.EnsureSchema(ctx, p.db, p.log)

	writer := graph.NewWriter(p.db, p.cfg.Annotations.Components, p.log)
	ws, err := writer.WriteFacts(ctx, project, res.Facts)
	if err != nil {
		return nil, fmt.Errorf("write facts: %w", err)
	}
	report.Facts = ws.FactsByKind
	report.Beans = ws.Beans
	report.MergeKeyErrors = ws.Dropped
	report.Graph = ws.Summary

	var resolveErr, crudErr error
	g, gctx := errgroup.WithContext(ctx)
	if !opts.SkipResolve {
		g.Go(func() error {
			stats, err := resolver.New(p.db, p.cfg.Annotations.Injection, p.log).Resolve(gctx, project)
			if err != nil {
				resolveErr = err
				return nil
			}
			report.Resolution = stats
			return nil
		})
	}
	if !opts.SkipCrud {
		g.Go(func() error {
			matrix, err := crud.New(p.db, p.log).Aggregate(gctx, project)
			if err != nil {
				crudErr = err
				return nil
			}
			report.Matrix = &MatrixSummary{Rows: matrix.Total, Skipped: matrix.Skipped}
			return nil
		})
	}
	_ = g.Wait()

	if resolveErr != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("resolve: %v", resolveErr))
		p.log.Error("dependency resolution failed", "error", resolveErr)
	}
	if crudErr != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("crud: %v", crudErr))
		p.log.Error("crud aggregation failed", "error", crudErr)
	}
	if report.Resolution != nil {
		report.Errors = append(report.Errors, report.Resolution.Errors...)
	}

	report.Duration = time.Since(started).Round(time.Millisecond).String()
	p.log.Info("analysis complete",
		"run_id", report.RunID,
		"project", project,
		"duration", report.Duration,
		"files_parsed", report.FilesParsed,
		"parse_errors", len(report.ParseErrors),
		"dropped_facts", len(report.MergeKeyErrors),
	)
	return report, nil
}
