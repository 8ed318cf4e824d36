package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tcgscraper/pkg/scraper"
	"tcgscraper/pkg/ui"
)

// expansionsCmd represents the expansions command
var expansionsCmd = &cobra.Command{
	Use:   "expansions",
	Short: "List the expansions available on the site",
	Long: `Fetch the card list page and print every expansion code and name the
site currently offers. The codes are what the scrape command accepts as
arguments.`,
	RunE: runExpansions,
}

func init() {
	rootCmd.AddCommand(expansionsCmd)
}

func runExpansions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if _, err := initLogger(cfg); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	expansions, err := s.ListExpansions(ctx)
	if err != nil {
		ui.PrintError("Failed to fetch expansion list", err.Error())
		os.Exit(1)
	}

	for _, e := range expansions {
		ui.PrintInfo(string(e.Code), e.Name)
	}
	return nil
}
