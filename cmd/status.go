package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/shipgate/internal/models"
	"github.com/joescharf/shipgate/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status [repo]",
	Short: "Fetch and show the ship-gate dashboard",
	Long: `Fetch all tracked projects and show a ship-gate overview table.

With a repo id (owner/name), shows the detailed status for that
project: gate and alert, stage breakdown, milestones, open PRs,
handoff, and north star.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return statusProjectRun(args[0])
		}
		return statusOverviewRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusOverviewRun() error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	batch := e.RefreshAll(context.Background())
	ui.VerboseLog("batch %s: %d projects in %s", batch.ID, len(batch.Statuses), batch.Elapsed.Round(time.Millisecond))

	table := ui.Table([]string{"Project", "Gate", "Stage", "Progress", "Branches", "PRs", "Activity", ""})
	for _, p := range e.Projects() {
		st, ok := batch.Statuses[p.Repo]
		if !ok {
			continue
		}

		activity := "n/a"
		if st.LastCommit != nil {
			if ts, err := time.Parse(time.RFC3339, st.LastCommit.Date); err == nil {
				activity = timeAgo(ts)
			}
		}
		branches := fmt.Sprintf("%d", st.Branches.Count)
		if !st.Branches.Healthy {
			branches = output.Yellow(branches)
		}
		errMark := ""
		if st.Error != "" {
			errMark = output.Red("!")
		}

		table.Append([]string{
			output.Cyan(st.DisplayName),
			output.GateColor(st.Gate.Status),
			string(st.Gate.CurrentStage),
			output.ProgressColor(st.Progress),
			branches,
			fmt.Sprintf("%d", len(st.OpenPRs)),
			activity,
			errMark,
		})
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, p := range e.Projects() {
		st, ok := batch.Statuses[p.Repo]
		if !ok {
			continue
		}
		if st.Gate.Alert != "" {
			ui.Warning("%s: %s", st.DisplayName, st.Gate.Alert)
		}
		if st.Error != "" {
			ui.Error("%s: %s", st.DisplayName, st.Error)
		}
	}
	return nil
}

func statusProjectRun(repo string) error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	batch := e.RefreshAll(context.Background())
	st, ok := batch.Statuses[repo]
	if !ok {
		// Accept a display name as well
		for _, cand := range batch.Statuses {
			if cand.DisplayName == repo {
				st, ok = cand, true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("project not tracked: %s", repo)
	}

	renderProjectStatus(st)
	return nil
}

func renderProjectStatus(st *models.ProjectStatus) {
	fmt.Fprintf(ui.Out, "%s (%s)\n", output.Cyan(st.DisplayName), st.Repo)
	if st.Description != "" {
		fmt.Fprintf(ui.Out, "  Desc:       %s\n", st.Description)
	}
	fmt.Fprintf(ui.Out, "  Gate:       %s (current: %s)\n", output.GateColor(st.Gate.Status), st.Gate.CurrentStage)
	if st.Gate.Alert != "" {
		fmt.Fprintf(ui.Out, "  Alert:      %s\n", output.Yellow(st.Gate.Alert))
	}
	fmt.Fprintf(ui.Out, "  Progress:   %s\n", output.ProgressColor(st.Progress))

	branchHealth := output.Green("healthy")
	if !st.Branches.Healthy {
		branchHealth = output.Yellow("unhealthy")
	}
	fmt.Fprintf(ui.Out, "  Branches:   %d (%s): %s\n", st.Branches.Count, branchHealth, strings.Join(st.Branches.Names, ", "))

	if st.LastCommit != nil {
		short := st.LastCommit.SHA
		if len(short) > 7 {
			short = short[:7]
		}
		fmt.Fprintf(ui.Out, "  Last commit: %s %s (%s)\n", short, firstLine(st.LastCommit.Message), st.LastCommit.Author)
	}
	fmt.Fprintln(ui.Out)

	if len(st.StageProgress) > 0 {
		fmt.Fprintf(ui.Out, "  Stages:\n")
		for _, sp := range st.StageProgress {
			fmt.Fprintf(ui.Out, "    %-4s %3d%% (%d/%d)\n", sp.Stage, sp.Percent, sp.Completed, sp.Total)
		}
	}

	if len(st.Milestones) > 0 {
		fmt.Fprintf(ui.Out, "  Milestones:\n")
		for _, m := range st.Milestones {
			fmt.Fprintf(ui.Out, "    %-6s %-30s %s\n", m.Phase, m.Name, milestoneStatusColor(m.Status))
		}
	}

	if len(st.OpenPRs) > 0 {
		fmt.Fprintf(ui.Out, "  Open PRs:\n")
		for _, pr := range st.OpenPRs {
			fmt.Fprintf(ui.Out, "    #%d %s (%s → %s) %s\n", pr.Number, pr.Title, pr.HeadRef, pr.BaseRef, output.MergeableColor(pr.Mergeable))
		}
	}

	if st.NorthStar != nil && st.NorthStar.Vision != "" {
		fmt.Fprintf(ui.Out, "  North star: %s\n", st.NorthStar.Vision)
	}
	if st.Session != nil && st.Session.NextStep != "" {
		fmt.Fprintf(ui.Out, "  Next step:  %s\n", firstLine(st.Session.NextStep))
	}
	if st.Error != "" {
		ui.Error("%s", st.Error)
	}
}

func milestoneStatusColor(status string) string {
	switch status {
	case models.StatusComplete:
		return output.Green(status)
	case models.StatusInProgress:
		return output.Yellow(status)
	case models.StatusPlanned:
		return status
	default:
		return output.Red(status)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}
