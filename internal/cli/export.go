package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"javamap/internal/crud"
	"javamap/internal/report"
	"javamap/internal/resolver"
)

var (
	exportFormatFlag string
	exportOutFlag    string
)

// validExportFormats lists accepted values for --format.
var validExportFormats = []string{"md", "xlsx", "dot"}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export wiring and CRUD matrix to a file",
	Long: `Export renders the analysis products to a file: a Markdown report, an
XLSX workbook with Matrix and Wiring sheets, or the bean dependency graph
in Graphviz DOT format.

Examples:
  # Markdown report into the configured export directory
  javamap export --project shop --format md

  # Workbook at an explicit path
  javamap export --project shop --format xlsx --out shop.xlsx

  # Render the wiring graph
  javamap export --project shop --format dot | dot -Tsvg -o wiring.svg
`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "md", "Output format: md, xlsx or dot")
	exportCmd.Flags().StringVar(&exportOutFlag, "out", "", "Output file (default under export.dir; dot prints to stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := validateExportFormat(exportFormatFlag); err != nil {
		return err
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

	project := cfg.Project.Name
	edges, err := resolver.New(db, cfg.Annotations.Injection, log).ListWiring(ctx, project, "")
	if err != nil {
		return fmt.Errorf("failed to list wiring: %w", err)
	}
	matrix, err := crud.New(db, log).Aggregate(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to aggregate crud matrix: %w", err)
	}

	switch exportFormatFlag {
	case "md":
		out, err := exportPath(cfg.Export.Dir, project+"-report.md")
		if err != nil {
			return err
		}
		doc := report.RenderMarkdown(project, edges, matrix)
		if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Markdown report written to %s\n", out)

	case "xlsx":
		out, err := exportPath(cfg.Export.Dir, project+"-report.xlsx")
		if err != nil {
			return err
		}
		if err := report.WriteWorkbook(out, project, edges, matrix); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Printf("Workbook written to %s\n", out)

	case "dot":
		doc, err := report.RenderDOT(project, edges)
		if err != nil {
			return err
		}
		if exportOutFlag == "" {
			fmt.Print(doc)
			return nil
		}
		if err := os.WriteFile(exportOutFlag, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write dot file: %w", err)
		}
		fmt.Printf("DOT graph written to %s\n", exportOutFlag)
	}
	return nil
}

// exportPath resolves the output file: the --out flag verbatim, or the
// default name under the configured export directory.
func exportPath(dir, name string) (string, error) {
	if exportOutFlag != "" {
		return exportOutFlag, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func validateExportFormat(format string) error {
	for _, f := range validExportFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validExportFormats, ", "))
}
