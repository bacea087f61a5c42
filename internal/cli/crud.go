package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"javamap/internal/crud"
)

var (
	crudTableFlag string
	crudClassFlag string
)

// crudCmd represents the crud command
var crudCmd = &cobra.Command{
	Use:   "crud",
	Short: "Print the CRUD matrix",
	Long: `Crud aggregates and prints the CRUD matrix for a project: one row per
(class, method, table) with the deduplicated operation set.

Examples:
  # Full matrix
  javamap crud --project shop

  # Who touches the orders table?
  javamap crud --project shop --table orders

  # What does OrderService touch?
  javamap crud --project shop --class OrderService
`,
	RunE: runCrud,
}

func init() {
	rootCmd.AddCommand(crudCmd)
	crudCmd.Flags().StringVar(&crudTableFlag, "table", "", "Only rows touching this table")
	crudCmd.Flags().StringVar(&crudClassFlag, "class", "", "Only rows of this class")
}

func runCrud(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	matrix, err := crud.New(db, log).Aggregate(ctx, cfg.Project.Name)
	if err != nil {
		return fmt.Errorf("failed to aggregate crud matrix: %w", err)
	}

	rows := matrix.Rows
	if crudTableFlag != "" || crudClassFlag != "" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if crudTableFlag != "" && row.Table != crudTableFlag {
				continue
			}
			if crudClassFlag != "" && row.Class != crudClassFlag {
				continue
			}
			filtered = append(filtered, row)
		}
		rows = filtered
	}
	if len(rows) == 0 {
		fmt.Println("No table access found. Run `javamap analyze` first.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tCLASS\tMETHOD\tSCHEMA\tTABLE\tOPS")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Package, row.Class, row.Method, row.Schema, row.Table,
			strings.Join(row.Ops, ","))
	}
	tw.Flush()

	fmt.Printf("\nTotal: %d rows", matrix.Total)
	if len(rows) != matrix.Total {
		fmt.Printf(" (%d shown)", len(rows))
	}
	fmt.Println()
	return nil
}
