package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datasetprep",
	Short: "Prepare question datasets for import into the study app",
	Long: `datasetprep unpacks a question/category dataset (an SQLite database plus
attachment images), checks its schema, optionally re-keys top-level
categories to the app's canonical ids and copies the result into the
app's resource folders. A JSON report of the run is printed on stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("sqlite-driver", "", "SQLite driver: sqlite3 (cgo) or sqlite (pure Go) (overrides DATASETPREP_SQLITE_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides DATASETPREP_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console or json (overrides DATASETPREP_LOG_FORMAT)")
	rootCmd.PersistentFlags().String("output", "", "Report format: json or yaml (overrides DATASETPREP_OUTPUT)")
}
