package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/budgetviz/internal/cli"
	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagNoCache  bool
	flagOffline  bool
	flagQuiet    bool
	flagView     string
	flagOverview string
	flagSpending string
	flagRevenue  string
)

var rootCmd = &cobra.Command{
	Use:   "budgetviz",
	Short: "Federal budget projection charts",
	Long:  "Chart federal debt, spending and revenue projections as a share of GDP.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagConfig != "" {
			config.SetPath(flagConfig)
		}
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite dataset cache")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Load datasets from the cache only")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVarP(&flagView, "view", "v", "", "Chart view (Overview, Spending, Revenue)")
	rootCmd.PersistentFlags().StringVar(&flagOverview, "overview", "", "Override the Overview dataset location")
	rootCmd.PersistentFlags().StringVar(&flagSpending, "spending", "", "Override the Spending dataset location")
	rootCmd.PersistentFlags().StringVar(&flagRevenue, "revenue", "", "Override the Revenue dataset location")
}

// loadConfig reads the config file and applies the source override flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagOverview != "" {
		cfg.Sources.Overview = flagOverview
	}
	if flagSpending != "" {
		cfg.Sources.Spending = flagSpending
	}
	if flagRevenue != "" {
		cfg.Sources.Revenue = flagRevenue
	}
	return cfg, nil
}

// requestedView returns the --view flag, or the configured default.
func requestedView(cfg config.Config) string {
	if flagView != "" {
		return flagView
	}
	return cfg.Chart.DefaultView
}

// loadOptions builds the pipeline options shared by every command. The
// returned cleanup closes the cache, if one was opened.
func loadOptions(cfg config.Config) (pipeline.Options, func(), error) {
	opts := pipeline.Options{
		Offline: flagOffline,
		Timeout: time.Duration(cfg.Sources.TimeoutSec) * time.Second,
	}
	if flagNoCache {
		if flagOffline {
			return opts, func() {}, errors.New("--offline needs the cache; drop --no-cache")
		}
		return opts, func() {}, nil
	}

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		if flagOffline {
			return opts, func() {}, fmt.Errorf("opening cache: %w", err)
		}
		// Cache open failed, load without it
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache unavailable, fetching without it\n")
		}
		return opts, func() {}, nil
	}
	opts.Cache = cache
	return opts, func() { _ = cache.Close() }, nil
}

// loadData is the shared data loading path used by all commands.
func loadData(ctx context.Context, cfg config.Config) (*pipeline.LoadResult, error) {
	opts, cleanup, err := loadOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	sources := pipeline.Sources(cfg)
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading %d datasets...\n", len(sources))
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  %s", cli.RenderProgressBar(current, total, 20))
	}

	result, err := pipeline.Load(ctx, sources, opts, progressFn)
	if err != nil {
		if !flagQuiet {
			fmt.Fprintln(os.Stderr)
		}
		return nil, err
	}

	if !flagQuiet {
		origin := "fetched"
		if result.FromCache {
			origin = "from cache"
		}
		fmt.Fprintf(os.Stderr, "\r  Loaded %d datasets %s in %s          \n",
			result.Datasets.Len(), origin, cli.FormatElapsed(result.LoadTime))
		if result.CacheErr != nil {
			fmt.Fprintln(os.Stderr, cli.RenderWarning("cache not updated: "+result.CacheErr.Error()))
		}
	}
	return result, nil
}
