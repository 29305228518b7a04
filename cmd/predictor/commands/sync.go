package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// syncCmd pulls the feed once
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the standings feed once and recompute chances",
	Long: `Fetches the configured feed (FEED_URL, FEED_FORMAT), stores the snapshot and
recomputes every group's qualification chances.

Example:
  FEED_URL=https://example.com/standings.json go run ./cmd/predictor sync`,
	RunE: runSync,
}

var syncTimeout time.Duration

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 2*time.Minute, "overall deadline")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.service.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	standings, err := a.service.Standings(ctx)
	if err != nil {
		return fmt.Errorf("load standings: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintHeader(out, "Standings sync")
	fmt.Fprintf(out, "  Version  : %s\n", FormatVersion(res.Version))
	fmt.Fprintf(out, "  Teams    : %d in %d groups\n", res.Teams, res.Groups)
	fmt.Fprintf(out, "  Fixtures : %d remaining\n", res.Fixtures)
	PrintSeparator(out)
	PrintChances(out, standings.QualificationChances, standings.PointsTable)
	PrintSuccess(out, fmt.Sprintf("Synced in %.2fs", res.Duration.Seconds()))

	return nil
}
