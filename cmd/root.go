package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/output"
	"github.com/joescharf/yr/internal/reviewer"
	"github.com/joescharf/yr/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "yr",
	Short: "Year reviewer - a short verdict on any year that has already happened",
	Long: `yr reviews calendar years. A few years have fixed reviews; every other
year up to the present gets one of a handful of default verdicts.

Reviews can be run from the command line, served over HTTP with 'yr serve',
or exposed to MCP clients with 'yr mcp'. Successful reviews are kept in a
local history.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	rootCmd.SetArgs(yearArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/yr/config.yaml)")
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

		viper.AddConfigPath(filepath.Join(home, ".config", "yr"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	bindEnv()

	home, _ := os.UserHomeDir()
	setDefaults(filepath.Join(home, ".config", "yr"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// bindEnv maps YR_* environment variables onto config keys.
func bindEnv() {
	viper.SetEnvPrefix("YR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// setDefaults registers every config key's default relative to stateDir.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("db_path", filepath.Join(stateDir, "yr.db"))
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("port", 8080)
	viper.SetDefault("log.level", "info")
}

func initDeps() {
	if ui == nil {
		ui = output.New()
	}
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The store is opened lazily so config/version work without a db.
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

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// newRecorder builds the recorder shared by the review surfaces. History is
// only opened when history.enabled is set and record is true.
func newRecorder(record bool, opts ...history.Option) (*history.Recorder, error) {
	var s store.Store
	if record && viper.GetBool("history.enabled") {
		st, err := getStore()
		if err != nil {
			return nil, err
		}
		s = st
	}
	return history.NewRecorder(reviewer.New(), s, opts...), nil
}

// newLogger builds the structured logger used by the servers. Logs go to
// stderr so they never mix with MCP traffic on stdout.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	level, err := configLogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

