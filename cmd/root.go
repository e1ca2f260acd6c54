package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/salesdash/internal/config"
	"github.com/KaramelBytes/salesdash/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	logLevelArg string

	// Loaded configuration
	cfg    *cfgpkg.Global
	appLog *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "salesdash: filter and aggregate vehicle sales data",
	Long: `salesdash loads a vehicle sales dataset (CSV, TSV or XLSX), narrows it with
multi-valued filters and reports totals, leaders, trends, correlations and
year-over-year growth as Markdown, JSON, exports or an HTML dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.salesdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands that don't need config still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{ListenAddr: ":8080", CacheSize: 64, DecimalSeparator: ".", ChartTheme: "light"}
	}
	cfg = c

	level := cfg.LogLevel
	if logLevelArg != "" {
		level = logLevelArg
	}
	if debug {
		level = "debug"
	}
	appLog = logger.New(logger.Options{Level: level, Format: cfg.LogFormat})
}

// ensureConfig covers commands executed without Execute, such as tests driving rootCmd.
func ensureConfig() {
	if cfg == nil || appLog == nil {
		loadConfig()
	}
}
