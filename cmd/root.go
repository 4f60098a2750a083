package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/output"
	"github.com/gavelhq/gavel/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	quiet   bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "Rule-based code review for pull requests and working trees",
	Long: `gavel runs a static, rule-based code review over source files or a
git diff: naming, complexity, security patterns, duplication, and more,
optionally merged with AI-generated findings. Results can be printed,
saved as review history, or served over MCP.`,
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

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/gavel/config.yaml)")
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

		configDir := filepath.Join(home, ".config", "gavel")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GAVEL")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "gavel")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "gavel.db"))
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.model", "claude-sonnet-4-5")
	viper.SetDefault("review.type", "full")
	viper.SetDefault("review.max_files", 50)
	viper.SetDefault("review.max_comments", 50)
	viper.SetDefault("review.min_severity", "suggestion")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.Quiet = quiet

	// Initialize store lazily — only when commands actually need it.
	// This allows config/rules commands to run without a db.
}

// loadReviewConfig builds the effective review configuration: defaults
// overlaid with the same YAML document viper found (when one exists).
func loadReviewConfig() (*config.Config, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		return config.Load("")
	}
	return config.Load(path)
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}
