package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"tcgscraper/pkg/config"
	"tcgscraper/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tcgscraper",
	Short: "A concurrent card-data harvester for the official card site",
	Long: `tcgscraper fetches card data from the official card site, expansion by
expansion, and maintains a local JSON store of every card it has seen.

Features:
  - One global rate ceiling shared by every concurrent fetch
  - Two-level concurrency across expansions and their cards
  - Automatic retry with exponential backoff on transient failures
  - Crash-consistent persistence: the store file is replaced atomically
  - Merge mode keeps previously scraped expansions across runs`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .tcgscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`tcgscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig layers defaults, config file, environment, and the global
// flags shared by every command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// initLogger installs the configured logger as the package singleton
func initLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.SetLogger(log)
	return log, nil
}
