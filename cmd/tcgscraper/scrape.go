package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tcgscraper/pkg/config"
	"tcgscraper/pkg/models"
	"tcgscraper/pkg/scraper"
	"tcgscraper/pkg/ui"
)

var (
	// Scrape command flags
	outputPath           string
	storeMode            string
	rateLimit            int
	fetchTimeout         int
	cardConcurrency      int
	expansionConcurrency int
	noProgress           bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [expansion codes...]",
	Short: "Fetch card data for the given expansions",
	Long: `Fetch every card of the given expansions and write the results to the
local JSON store. With no arguments, every expansion listed on the site
is scraped.

All fetches share one global rate ceiling. Cards that keep failing after
retries are reported at the end; they never abort the run.`,
	Example: `  # Scrape two expansions with default settings
  tcgscraper scrape EB01 PR

  # Scrape everything the site lists, gently
  tcgscraper scrape --rate-limit 3

  # Rebuild the store from scratch into a custom file
  tcgscraper scrape EB01 --mode overwrite --output ./eb01.json`,
	Args: cobra.ArbitraryArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "store file path (default: card_data.json)")
	scrapeCmd.Flags().StringVar(&storeMode, "mode", "", "store mode: merge or overwrite")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per second across all fetches")
	scrapeCmd.Flags().IntVar(&fetchTimeout, "timeout", 0, "per-request timeout in seconds")
	scrapeCmd.Flags().IntVar(&cardConcurrency, "card-concurrency", 0, "concurrent card fetches per expansion")
	scrapeCmd.Flags().IntVar(&expansionConcurrency, "expansion-concurrency", 0, "expansions processed in parallel")
	scrapeCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the terminal progress line")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	applyScrapeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		ui.PrintError("Invalid configuration", err.Error())
		os.Exit(1)
	}

	log, err := initLogger(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log.WithField("version", version).Info("tcgscraper starting")

	// SIGINT drains gracefully: in-flight work finishes and everything
	// collected is still saved.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	ids := make([]models.ExpansionID, 0, len(args))
	for _, arg := range args {
		ids = append(ids, models.ExpansionID(arg))
	}
	if len(ids) == 0 {
		expansions, err := s.ListExpansions(ctx)
		if err != nil {
			log.WithError(err).Error("Fetching expansion list failed")
			ui.PrintError("Failed to fetch expansion list", err.Error())
			os.Exit(1)
		}
		for _, e := range expansions {
			ids = append(ids, e.Code)
		}
		ui.PrintInfo("Expansions discovered", fmt.Sprintf("%d", len(ids)))
	}

	var display *ui.Display
	if !noProgress {
		display = ui.NewDisplay(s.Progress(), 250*time.Millisecond)
		display.Start()
	}

	result, runErr := s.Run(ctx, ids)

	if display != nil {
		display.Stop()
	}

	if result != nil {
		snap := s.Progress().Snapshot()
		fmt.Print(ui.Summary(snap))
		ui.PrintInfo("Records written", fmt.Sprintf("%d", result.RecordsWritten))
		for _, f := range result.Failures {
			if f.Card == "" {
				ui.PrintWarning(fmt.Sprintf("expansion %s failed", f.Expansion), f.Err)
			} else {
				ui.PrintWarning(fmt.Sprintf("card %s/%s failed", f.Expansion, f.Card), f.Err)
			}
		}
	}

	if runErr != nil {
		log.WithError(runErr).Error("Scrape failed")
		ui.PrintError("SCRAPE FAILED", runErr.Error())
		os.Exit(1)
	}

	log.Info("Scrape completed successfully")
	ui.PrintSuccess("Scrape completed")
	return nil
}

// applyScrapeFlags overrides config values with flags the user set
func applyScrapeFlags(cfg *config.Config) {
	if outputPath != "" {
		cfg.Store.Path = outputPath
	}
	if storeMode != "" {
		cfg.Store.Mode = config.StoreMode(storeMode)
	}
	if rateLimit > 0 {
		cfg.RateLimit.RequestsPerSecond = rateLimit
	}
	if fetchTimeout > 0 {
		cfg.Fetch.Timeout = time.Duration(fetchTimeout) * time.Second
	}
	if cardConcurrency > 0 {
		cfg.Fetch.CardConcurrency = cardConcurrency
	}
	if expansionConcurrency > 0 {
		cfg.Fetch.ExpansionConcurrency = expansionConcurrency
	}
}
