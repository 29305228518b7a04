package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "predictor",
	Short: "T20 World Cup qualification predictor",
	Long: `T20 World Cup qualification predictor

Computes every team's chance of finishing in the top two of its group by
enumerating all results of the remaining fixtures, and shows how a single
result would move those chances.

Usage:
  go run ./cmd/predictor [command]

Examples:
  go run ./cmd/predictor api
  go run ./cmd/predictor simulate scenarios/group1.yaml
  go run ./cmd/predictor sync
  go run ./cmd/predictor db migrate`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
