package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"javamap/internal/resolver"
)

var wiringKindFlag string

// wiringCmd represents the wiring command
var wiringCmd = &cobra.Command{
	Use:   "wiring",
	Short: "List resolved bean dependencies",
	Long: `Wiring lists the DEPENDS_ON edges resolved for a project, one line
per injection point.

Examples:
  # All dependencies
  javamap wiring --project shop

  # Constructor injection only
  javamap wiring --project shop --kind constructor
`,
	RunE: runWiring,
}

func init() {
	rootCmd.AddCommand(wiringCmd)
	wiringCmd.Flags().StringVar(&wiringKindFlag, "kind", "", "Filter by injection kind (field, constructor, setter)")
}

func runWiring(cmd *cobra.Command, args []string) error {
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

	edges, err := resolver.New(db, cfg.Annotations.Injection, log).ListWiring(ctx, cfg.Project.Name, wiringKindFlag)
	if err != nil {
		return fmt.Errorf("failed to list wiring: %w", err)
	}
	if len(edges) == 0 {
		fmt.Println("No resolved dependencies. Run `javamap analyze` first.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tKIND\tNAME\tDECLARED TYPE\tTARGET\tBEAN")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Src(), e.Kind, e.Name, e.Type, e.Dst(), e.DstBean)
	}
	tw.Flush()
	fmt.Printf("\n%d dependencies\n", len(edges))
	return nil
}
