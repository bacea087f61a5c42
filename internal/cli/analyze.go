package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"javamap/internal/pipeline"
)

var (
	reportFlag      string
	skipResolveFlag bool
	skipCrudFlag    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a Java source tree into the graph",
	Long: `Analyze walks a Java source tree, extracts classes, members, MyBatis
statements and table references, writes them into the graph, and then
resolves bean wiring and aggregates the CRUD matrix.

The run never aborts on bad input: unparseable files, incomplete records
and unresolvable types are collected into the run report instead.

Examples:
  # Analyze the current directory
  javamap analyze --project shop

  # Analyze a checkout and keep the full run report
  javamap analyze ~/src/shop-backend --project shop --report run.json

  # Extraction and write only
  javamap analyze --project shop --skip-resolve --skip-crud
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&reportFlag, "report", "", "Write the full run report as JSON to this file")
	analyzeCmd.Flags().BoolVar(&skipResolveFlag, "skip-resolve", false, "Skip dependency-injection resolution")
	analyzeCmd.Flags().BoolVar(&skipCrudFlag, "skip-crud", false, "Skip CRUD matrix aggregation")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	rootDir := "."
	if len(args) == 1 {
		rootDir = args[0]
	}
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	report, err := pipeline.New(cfg, db, log).Run(ctx, pipeline.Options{
		RootDir:     rootDir,
		SkipResolve: skipResolveFlag,
		SkipCrud:    skipCrudFlag,
		Progress:    NewCLIProgressReporter(quietFlag),
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	printRunSummary(report)

	if reportFlag != "" {
		if err := report.WriteJSON(reportFlag); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportFlag)
	}
	return nil
}

func printRunSummary(r *pipeline.Report) {
	fmt.Println()
	fmt.Printf("✓ Analysis complete: %s (run %s, %s)\n", r.Project, r.RunID, r.Duration)
	fmt.Printf("  Files:      %d parsed / %d seen\n", r.FilesParsed, r.FilesSeen)
	fmt.Printf("  Facts:      %d classes, %d fields, %d methods, %d statements, %d table refs\n",
		r.Facts["class"], r.Facts["field"], r.Facts["method"],
		r.Facts["sql_statement"], r.Facts["table_ref"])
	fmt.Printf("  Graph:      %d nodes, %d relationships created\n",
		r.Graph.NodesCreated, r.Graph.RelationshipsCreated)
	fmt.Printf("  Beans:      %d\n", r.Beans)
	if r.Resolution != nil {
		fmt.Printf("  Wiring:     %d edges (%d misses, %d ambiguous)\n",
			r.Resolution.TotalEdges(), r.Resolution.TotalMisses(), r.Resolution.TotalAmbiguous())
	}
	if r.Matrix != nil {
		fmt.Printf("  CRUD:       %d rows\n", r.Matrix.Rows)
	}
	if len(r.ParseErrors) > 0 {
		fmt.Printf("  Parse errors: %d\n", len(r.ParseErrors))
		for i, pe := range r.ParseErrors {
			if i == 5 {
				fmt.Printf("    ... and %d more (use --report for the full list)\n", len(r.ParseErrors)-i)
				break
			}
			fmt.Printf("    %s: %s\n", pe.File, pe.Reason)
		}
	}
	if len(r.MergeKeyErrors) > 0 {
		fmt.Printf("  Dropped facts: %d (incomplete keys; see --report)\n", len(r.MergeKeyErrors))
	}
	for _, e := range r.Errors {
		fmt.Printf("  Stage error: %s\n", e)
	}
}
