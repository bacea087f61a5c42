// Package extractor turns a Java web application source tree into fact
// records: type structure from Java sources, SQL statements and table
// references from MyBatis mappers.
//
// Extraction is a three-phase pipeline: serial discovery, a parser worker
// pool, and serial collection. Per-file failures become parse error records
// and never abort the run.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"javamap/internal/facts"
	"javamap/internal/logger"
)

// Options configures an extraction run.
type Options struct {
	Project  string
	RootDir  string
	Include  []string
	Exclude  []string
	Workers  int              // 0 means one per CPU
	Progress ProgressReporter // nil means silent
}

// Result is the outcome of one extraction run.
type Result struct {
	Facts       []facts.Fact
	ParseErrors []facts.ParseError
	FilesSeen   int
	FilesParsed int
}

type job struct {
	path string
	rel  string
	java bool
}

type fileResult struct {
	rel   string
	facts []facts.Fact
	err   error
}

// Extractor produces fact records from a source tree.
type Extractor struct {
	opts Options
	log  *logger.Logger
}

// New creates an extractor. The project name is required; it tags every
// produced fact.
func New(opts Options, log *logger.Logger) (*Extractor, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("extractor: project name required")
	}
	if opts.RootDir == "" {
		return nil, fmt.Errorf("extractor: root directory required")
	}
	if opts.Progress == nil {
		opts.Progress = &NoOpProgressReporter{}
	}
	return &Extractor{
		opts: opts,
		log:  log.With("component", "extractor"),
	}, nil
}

// Run discovers and parses sources. Per-file failures land in the result's
// ParseErrors; only discovery itself or cancellation can fail the run.
func (e *Extractor) Run(ctx context.Context) (*Result, error) {
	e.opts.Progress.OnDiscoveryStart()

	discovery, err := NewFileDiscovery(e.opts.RootDir, e.opts.Include, e.opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("compile patterns: %w", err)
	}

	javaFiles, xmlFiles, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	e.opts.Progress.OnDiscoveryComplete(len(javaFiles), len(xmlFiles))
	e.log.Debug("discovery complete", "java_files", len(javaFiles), "xml_files", len(xmlFiles))

	jobs := make([]job, 0, len(javaFiles)+len(xmlFiles))
	for _, f := range javaFiles {
		jobs = append(jobs, job{path: f, rel: e.relPath(f), java: true})
	}
	for _, f := range xmlFiles {
		jobs = append(jobs, job{path: f, rel: e.relPath(f)})
	}

	result := &Result{FilesSeen: len(jobs)}
	if len(jobs) == 0 {
		e.opts.Progress.OnExtractionComplete(0, 0)
		return result, nil
	}

	e.opts.Progress.OnExtractionStart(len(jobs))

	numWorkers := e.opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	workCh := make(chan job, len(jobs))
	resultCh := make(chan fileResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Parser instances are not safe for concurrent use, so each
			// worker owns its own pair.
			javaEx := newJavaExtractor(e.opts.Project)
			xmlEx := newXMLExtractor(e.opts.Project)
			for j := range workCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- e.extractOne(javaEx, xmlEx, j)
			}
		}()
	}

	for _, j := range jobs {
		workCh <- j
	}
	close(workCh)
	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for fr := range resultCh {
		if fr.err != nil {
			result.ParseErrors = append(result.ParseErrors, facts.ParseError{
				File:   fr.rel,
				Reason: fr.err.Error(),
			})
			e.log.Warn("file skipped", "file", fr.rel, "error", fr.err)
			continue
		}
		result.FilesParsed++
		result.Facts = append(result.Facts, fr.facts...)
	}

	e.opts.Progress.OnExtractionComplete(len(result.Facts), len(result.ParseErrors))
	e.log.Info("extraction complete",
		"files_seen", result.FilesSeen,
		"files_parsed", result.FilesParsed,
		"facts", len(result.Facts),
		"parse_errors", len(result.ParseErrors),
	)

	return result, nil
}

func (e *Extractor) extractOne(javaEx *javaExtractor, xmlEx *xmlExtractor, j job) fileResult {
	var (
		fs  []facts.Fact
		err error
	)
	if j.java {
		fs, err = javaEx.ExtractFile(j.path, j.rel)
	} else {
		fs, err = xmlEx.ExtractFile(j.path, j.rel)
	}
	e.opts.Progress.OnFileExtracted(j.rel)
	return fileResult{rel: j.rel, facts: fs, err: err}
}

func (e *Extractor) relPath(path string) string {
	rel, err := filepath.Rel(e.opts.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
