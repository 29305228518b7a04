package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintSeparator(w)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// FormatPercent renders a chance with one decimal
func FormatPercent(p qualification.Percentage) string {
	return fmt.Sprintf("%.1f%%", float64(p))
}

// FormatChange renders a signed delta in percentage points
func FormatChange(delta float64) string {
	if delta == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%+.1f", delta)
}

// FormatVersion renders a snapshot version (unix ms) as a timestamp
func FormatVersion(version int64) string {
	return time.UnixMilli(version).UTC().Format("2006-01-02 15:04:05 MST")
}

// PrintChances prints stored chances as a per-group table
func PrintChances(w io.Writer, chances []tournament.Chance, table []predictor.TeamView) {
	names := make(map[qualification.TeamID]predictor.TeamView, len(table))
	for _, t := range table {
		names[t.ID] = t
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tTEAM\tPTS\tNRR\tCHANCE\tSTATUS")
	for _, c := range chances {
		t := names[c.TeamID]
		label := t.Label
		if label == "" {
			label = string(c.TeamID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%+.3f\t%s\t%s\n",
			c.Group, label, t.Points, t.NRR, FormatPercent(c.Percentage), c.Status)
	}
	tw.Flush()
}

// PrintBaseline prints one group's chances in table order
func PrintBaseline(w io.Writer, teams []qualification.Team, pct map[qualification.TeamID]qualification.Percentage) {
	entries := make([]qualification.StandingsEntry, 0, len(teams))
	byID := make(map[qualification.TeamID]qualification.Team, len(teams))
	for _, t := range teams {
		entries = append(entries, qualification.StandingsEntry{TeamID: t.ID, Points: t.Points, NRR: t.NRR})
		byID[t.ID] = t
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEAM\tPTS\tNRR\tCHANCE\tSTATUS")
	for i, e := range qualification.Rank(entries) {
		t := byID[e.TeamID]
		fmt.Fprintf(tw, "%d\t%s\t%d\t%+.3f\t%s\t%s\n",
			i+1, teamName(t), t.Points, t.NRR, FormatPercent(pct[t.ID]), qualification.StatusOf(pct[t.ID]))
	}
	tw.Flush()
}

// PrintImpact prints a what-if result
func PrintImpact(w io.Writer, res *qualification.ImpactResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tTEAM\tBEFORE\tAFTER\tCHANGE\tDIRECTION")

	row := func(role string, ti qualification.TeamImpact) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			role, impactName(ti), FormatPercent(ti.Before), FormatPercent(ti.After), FormatChange(ti.Change), ti.Direction)
	}

	row("winner", res.Winner)
	row("loser", res.Loser)

	ripples := make(map[qualification.TeamID]bool, len(res.Ripples))
	for _, r := range res.Ripples {
		ripples[r.TeamID] = true
	}
	for _, o := range res.Others {
		role := "other"
		if ripples[o.TeamID] {
			role = "ripple"
		}
		row(role, o)
	}
	tw.Flush()
}

func teamName(t qualification.Team) string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.ID)
}

func impactName(ti qualification.TeamImpact) string {
	if ti.Name != "" {
		return ti.Name
	}
	return string(ti.TeamID)
}
