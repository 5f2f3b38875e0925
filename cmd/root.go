package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/bikedash/internal/config"
	"github.com/KaramelBytes/bikedash/internal/dataset"
	"github.com/KaramelBytes/bikedash/internal/logging"
	"github.com/KaramelBytes/bikedash/internal/views"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagLogLevel string

	// Loaded configuration
	cfg *cfgpkg.Global

	// loadDataset reads df_hour_cleaned.csv once per process; tests swap it.
	loadDataset views.Loader = dataset.Default
)

var rootCmd = &cobra.Command{
	Use:   "bikedash",
	Short: "Bike rental dashboard: explore the hourly Capital Bikeshare dataset",
	Long: `bikedash loads df_hour_cleaned.csv from the working directory and presents four views:
about, overview, visualization and rfm. Print them in the terminal with "view" or browse them with "serve".`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bikedash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	applyOverrides(cfg)
}

func applyOverrides(c *cfgpkg.Global) {
	if rootCmd.PersistentFlags().Changed("log-level") && flagLogLevel != "" {
		c.LogLevel = flagLogLevel
	}
	if debug {
		c.LogLevel = "debug"
	}
}

// effectiveConfig returns the loaded config, or defaults when loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c := cfgpkg.Default()
	applyOverrides(c)
	return c
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	return logging.New(c.LogLevel, c.LogFormat)
}

// datasetLoader wraps loadDataset with a debug line per call.
func datasetLoader(log *zap.Logger) views.Loader {
	return func() (*dataset.Dataset, error) {
		start := time.Now()
		ds, err := loadDataset()
		if err != nil {
			return nil, err
		}
		log.Debug("dataset ready",
			zap.String("path", ds.Path),
			zap.Int("rows", ds.Len()),
			zap.Duration("took", time.Since(start)),
		)
		return ds, nil
	}
}
