package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/shipgate/internal/engine"
	"github.com/joescharf/shipgate/internal/github"
	"github.com/joescharf/shipgate/internal/output"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Override configDirFunc for tests
	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	// Reset viper
	viper.Reset()
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.api_url", github.DefaultBaseURL)
	viper.SetDefault("github.ref", engine.DefaultRef)
	viper.SetDefault("docs.vision", engine.DefaultVisionPath)
	viper.SetDefault("docs.milestones", engine.DefaultMilestonesPath)
	viper.SetDefault("docs.handoff", engine.DefaultHandoffPath)
	viper.SetDefault("refresh.interval", engine.DefaultInterval)
	viper.SetDefault("refresh.concurrency", engine.DefaultConcurrency)
	viper.SetDefault("port", 8080)

	// Initialize output
	ui = output.New()

	return dir
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := testEnv(t)

	err := configInitRun()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.NoError(t, err, "config file should exist")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shipgate configuration")
	assert.Contains(t, string(data), "projects")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = false
	err := configInitRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwrite(t *testing.T) {
	dir := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = true
	t.Cleanup(func() { configForce = false })
	err := configInitRun()
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shipgate configuration")
}

func TestLoadProjects(t *testing.T) {
	testEnv(t)

	viper.Set("projects", []map[string]any{
		{"repo": "acme/roadmap", "name": "Roadmap", "description": "Planning"},
		{"repo": "acme/api"},
	})

	projects, err := loadProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Roadmap", projects[0].DisplayName)
	// Display name defaults to the repo id
	assert.Equal(t, "acme/api", projects[1].DisplayName)
}

func TestLoadProjects_RepoRequired(t *testing.T) {
	testEnv(t)

	viper.Set("projects", []map[string]any{{"name": "nameless"}})

	_, err := loadProjects()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo is required")
}

func TestRefreshInterval_Default(t *testing.T) {
	testEnv(t)
	assert.Equal(t, engine.DefaultInterval, refreshInterval())

	viper.Set("refresh.interval", "5m")
	assert.Equal(t, 5*time.Minute, refreshInterval())
}

func TestConfigShow_Runs(t *testing.T) {
	testEnv(t)
	require.NoError(t, configShowRun())
}
