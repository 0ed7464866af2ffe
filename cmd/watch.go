package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/shipgate/internal/engine"
	"github.com/joescharf/shipgate/internal/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-refresh the dashboard on an interval",
	Long: `Run the refresh loop in the foreground, re-rendering the overview
after each cycle. The first fetch happens immediately; Ctrl-C stops
the loop (a cycle already in flight settles normally).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchRun()
	},
}

func init() {
	watchCmd.Flags().DurationP("interval", "i", engine.DefaultInterval, "Refresh interval")
	_ = viper.BindPFlag("refresh.interval", watchCmd.Flags().Lookup("interval"))
	rootCmd.AddCommand(watchCmd)
}

func watchRun() error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	e.OnPublish(func(batch engine.Batch) {
		renderWatchBatch(e, batch)
	})

	interval := refreshInterval()
	ui.Info("watching %d projects every %s", len(e.Projects()), interval)

	stop := e.StartAutoRefresh(ctx, interval)
	defer stop()

	<-ctx.Done()
	ui.Info("stopped")
	return nil
}

func renderWatchBatch(e *engine.Engine, batch engine.Batch) {
	ui.Info("refreshed %d projects at %s (%s)", len(batch.Statuses),
		batch.StartedAt.Local().Format("15:04:05"), batch.Elapsed.Round(time.Millisecond))

	table := ui.Table([]string{"Project", "Gate", "Stage", "Progress", ""})
	for _, p := range e.Projects() {
		st, ok := batch.Statuses[p.Repo]
		if !ok {
			continue
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
			errMark,
		})
	}
	_ = table.Render()

	for _, p := range e.Projects() {
		if st, ok := batch.Statuses[p.Repo]; ok && st.Gate.Alert != "" {
			ui.Warning("%s: %s", st.DisplayName, st.Gate.Alert)
		}
	}
}
