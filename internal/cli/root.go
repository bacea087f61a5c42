// Package cli wires the javamap command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	projectFlag string
	quietFlag   bool
	verboseFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "javamap",
	Short: "Map a Java codebase into a Neo4j property graph",
	Long: `javamap statically analyzes a layered Java web application
(controllers, services, repositories, MyBatis mappers) and materializes
its structure into a Neo4j property graph: classes, members, beans,
SQL statements and the tables they touch.

From the graph it derives two products: the bean wiring graph
(dependency-injection edges) and the CRUD matrix (which method touches
which table, and how).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./javamap.yml)")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "project name (overrides project.name from config)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose console logging")
}
