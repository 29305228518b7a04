package commands

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/scenario"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// simulateCmd runs the simulator offline on a scenario file
var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Compute chances for a scenario file",
	Long: `Loads a YAML or JSON scenario (teams, remaining fixtures, optional whatIf),
prints every group's qualification chances and, when a result is forced,
how it moves the group.

--winner forces a result on top of the file: with --team1/--team2 it picks the
match, otherwise it replaces the winner of the file's whatIf.

Example:
  go run ./cmd/predictor simulate scenarios/group1.yaml
  go run ./cmd/predictor simulate scenarios/group1.yaml --winner 4
  go run ./cmd/predictor simulate scenarios/group1.yaml --team1 1 --team2 2 --winner 2`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simTeam1  string
	simTeam2  string
	simWinner string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simTeam1, "team1", "", "first team of the forced match")
	simulateCmd.Flags().StringVar(&simTeam2, "team2", "", "second team of the forced match")
	simulateCmd.Flags().StringVar(&simWinner, "winner", "", "winner of the forced match")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	whatIf, err := resolveWhatIf(sc.WhatIf, simTeam1, simTeam2, simWinner)
	if err != nil {
		return err
	}
	sc.WhatIf = whatIf

	sim := qualification.NewSimulator(qualification.Config{
		MaxFixtures: cfg.Simulator.MaxFixtures,
		Workers:     cfg.Simulator.Workers,
	}, log.Zerolog())

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Simulator.Timeout)
	defer cancel()

	return simulate(ctx, cmd.OutOrStdout(), sim, sc)
}

// resolveWhatIf merges the command line over the file's whatIf
func resolveWhatIf(file *scenario.WhatIf, team1, team2, winner string) (*scenario.WhatIf, error) {
	if team1 == "" && team2 == "" && winner == "" {
		return file, nil
	}
	if winner == "" {
		return nil, fmt.Errorf("--team1/--team2 need --winner")
	}

	w := &scenario.WhatIf{Winner: qualification.TeamID(winner)}
	switch {
	case team1 != "" && team2 != "":
		w.Team1, w.Team2 = qualification.TeamID(team1), qualification.TeamID(team2)
	case team1 != "" || team2 != "":
		return nil, fmt.Errorf("--team1 and --team2 go together")
	case file != nil:
		w.Team1, w.Team2 = file.Team1, file.Team2
	default:
		return nil, fmt.Errorf("--winner needs --team1/--team2 or a whatIf in the file")
	}
	return w, nil
}

// simulate prints the baseline per group, then the what-if if any
func simulate(ctx context.Context, w io.Writer, sim *qualification.Simulator, sc *scenario.Scenario) error {
	hash, err := scenario.Hash(sc)
	if err != nil {
		return fmt.Errorf("hash scenario: %w", err)
	}

	pct, err := sim.ComputeBaseline(ctx, sc.Teams, sc.Fixtures)
	if err != nil {
		return fmt.Errorf("compute baseline: %w", err)
	}

	title := sc.Name
	if title == "" {
		title = "Scenario"
	}
	PrintHeader(w, title)
	fmt.Fprintf(w, "  Teams    : %d\n", len(sc.Teams))
	fmt.Fprintf(w, "  Fixtures : %d remaining\n", len(sc.Fixtures))
	fmt.Fprintf(w, "  Hash     : %s\n", hash[:12])

	groups := make(map[qualification.GroupID][]qualification.Team)
	for _, t := range sc.Teams {
		groups[t.Group] = append(groups[t.Group], t)
	}
	ids := make([]qualification.GroupID, 0, len(groups))
	for g := range groups {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, g := range ids {
		PrintSeparator(w)
		fmt.Fprintf(w, "Group %s\n", g)
		PrintBaseline(w, groups[g], pct)
	}

	if sc.WhatIf == nil {
		return nil
	}

	res, err := sim.ComputeImpact(ctx, sc.Teams, sc.Fixtures, sc.WhatIf.Team1, sc.WhatIf.Team2, sc.WhatIf.Winner)
	if err != nil {
		return fmt.Errorf("compute impact: %w", err)
	}

	PrintSeparator(w)
	fmt.Fprintf(w, "What if %s beats %s\n", impactName(res.Winner), impactName(res.Loser))
	PrintImpact(w, res)
	if len(res.Ripples) == 0 {
		fmt.Fprintln(w, "No ripple effects")
	}
	return nil
}
