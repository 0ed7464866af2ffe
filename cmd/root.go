package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/shipgate/internal/engine"
	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/models"
	"github.com/joescharf/shipgate/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool

	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   "shipgate",
	Short: "Ship-gate intelligence for tracked repositories",
	Long: `shipgate polls configured repositories, reconstructs each project's
development state from its planning documents and repository metadata,
and classifies whether the project is ready to ship, still building,
shipping while building the next stage, or drifting into scope creep.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusOverviewRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/shipgate/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "shipgate")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SHIPGATE")
	viper.AutomaticEnv()

	viper.SetDefault("github.token", "")
	viper.SetDefault("github.api_url", github.DefaultBaseURL)
	viper.SetDefault("github.ref", engine.DefaultRef)
	viper.SetDefault("docs.vision", engine.DefaultVisionPath)
	viper.SetDefault("docs.milestones", engine.DefaultMilestonesPath)
	viper.SetDefault("docs.handoff", engine.DefaultHandoffPath)
	viper.SetDefault("refresh.interval", engine.DefaultInterval)
	viper.SetDefault("refresh.concurrency", engine.DefaultConcurrency)
	viper.SetDefault("port", 8080)
	viper.SetDefault("projects", []map[string]string{})

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// loadProjects reads the tracked project list from config.
func loadProjects() ([]models.TrackedProject, error) {
	var projects []models.TrackedProject
	if err := viper.UnmarshalKey("projects", &projects); err != nil {
		return nil, fmt.Errorf("parse projects config: %w", err)
	}
	for i, p := range projects {
		if p.Repo == "" {
			return nil, fmt.Errorf("projects[%d]: repo is required", i)
		}
		if p.DisplayName == "" {
			projects[i].DisplayName = p.Repo
		}
	}
	return projects, nil
}

// getEngine builds the engine from the effective configuration.
func getEngine() (*engine.Engine, error) {
	projects, err := loadProjects()
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects configured; add a projects: list to your config (see 'shipgate config init')")
	}

	client := github.NewClient(
		github.WithBaseURL(viper.GetString("github.api_url")),
		github.WithToken(viper.GetString("github.token")),
	)
	cfg := engine.Config{
		Ref:            viper.GetString("github.ref"),
		VisionPath:     viper.GetString("docs.vision"),
		MilestonesPath: viper.GetString("docs.milestones"),
		HandoffPath:    viper.GetString("docs.handoff"),
		Concurrency:    viper.GetInt("refresh.concurrency"),
	}
	return engine.New(client, cfg, projects), nil
}

// refreshInterval returns the configured auto-refresh period.
func refreshInterval() time.Duration {
	d := viper.GetDuration("refresh.interval")
	if d <= 0 {
		d = engine.DefaultInterval
	}
	return d
}
