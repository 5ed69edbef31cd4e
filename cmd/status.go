package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/budgetviz/internal/cli"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/store"

	"github.com/spf13/cobra"
)

var flagStatusClear bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured sources and the dataset cache",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusClear, "clear", false, "Drop cached copies of the configured sources")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	sources := pipeline.Sources(cfg)
	if flagStatusClear {
		for _, src := range sources {
			if err := cache.DeleteDataset(src.Location); err != nil {
				return fmt.Errorf("clearing %s: %w", src.Location, err)
			}
		}
		fmt.Printf("\n  Cleared %d cached datasets\n", len(sources))
	}

	entries, err := cache.Entries()
	if err != nil {
		return err
	}
	cached := make(map[string]store.Entry, len(entries))
	for _, e := range entries {
		cached[e.Source] = e
	}

	t := cli.Table{
		Title:   "Sources",
		Headers: []string{"View", "Location", "Cached rows", "Fetched"},
		Footer:  "Cache: " + pipeline.CachePath(),
	}
	for _, src := range sources {
		rows, fetched := "-", "never"
		if e, ok := cached[src.Location]; ok {
			rows = cli.FormatNumber(int64(e.Rows))
			fetched = e.FetchedAt.Local().Format(time.DateTime)
		}
		loc := src.Location
		if loc == "" {
			loc = "not configured"
		}
		t.Rows = append(t.Rows, []string{string(src.Topic), loc, rows, fetched})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Println()
	return nil
}
