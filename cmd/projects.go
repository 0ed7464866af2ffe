package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/shipgate/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"ls"},
	Short:   "List configured tracked projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectsListRun()
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func projectsListRun() error {
	projects, err := loadProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		ui.Info("No projects configured. Add a projects: list to your config (see 'shipgate config init').")
		return nil
	}

	table := ui.Table([]string{"Repo", "Name", "Description"})
	for _, p := range projects {
		table.Append([]string{output.Cyan(p.Repo), p.DisplayName, p.Description})
	}
	return table.Render()
}
