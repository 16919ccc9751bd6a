package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dsv",
	Short: "dsv - parse delimited text files",
	Long: `dsv parses delimited text files (CSV, TSV, pipe or custom delimited)
into rows of fields, with optional bookend stripping, column-count
detection and strict width validation.

Examples:
  dsv parse data.csv --delimiter ,
  dsv parse data.psv --delimiter '|' --bookend '"' --skip-header 1
  dsv parse big.tsv --delimiter $'\t' --stream --chunk-size 1000
  dsv parse data.csv --delimiter , --detect-columns --raise-on-missing-columns
  dsv parse data.csv --config dsv.yaml --output-format ndjson`,
	Version: "1.0.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
