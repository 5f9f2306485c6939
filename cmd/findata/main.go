// findata retrieves company filings, financial statements and price history
// for listed companies from public regulatory and market-data sources.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/findata/internal/config"
	"github.com/seenimoa/findata/internal/logger"
	"github.com/seenimoa/findata/internal/stock"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "findata",
	Short: "findata - company filings, financial statements and prices",
	Long: `findata resolves a stock symbol in its market (USA via SEC EDGAR,
KOR via the Korea Exchange) and retrieves its filings, as-reported and
standardized financial statements and daily price history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return logger.L().Configure(logger.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			Output:     cfg.Logging.Output,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("country", "USA", "market country code, ISO 3166 alpha-3 (USA, KOR)")
	rootCmd.PersistentFlags().Bool("json", false, "print JSON instead of tables")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cikCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(financialsCmd)
	rootCmd.AddCommand(standardCmd)
	rootCmd.AddCommand(historicalCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(statusCmd)
}

// newClient builds the query client from the loaded config.
func newClient() (*stock.Client, error) {
	return stock.NewFromConfig(cfg)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("findata %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}
