package cmd

import (
	"fmt"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/cli"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagSummaryAll bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Per-category first, reference-year and last values",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVarP(&flagSummaryAll, "all", "a", false, "Summarize every loaded dataset even when --view is set")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadData(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	refYear := cfg.Chart.ReferenceYear
	var sets []model.Dataset
	if flagSummaryAll || flagView == "" {
		sets = result.Datasets.All()
	} else {
		view, fellBack := chart.ResolveView(result.Datasets, flagView)
		if fellBack {
			fmt.Printf("\n  %q is not available; showing %s\n", flagView, view)
		}
		d, _ := result.Datasets.Get(view)
		sets = []model.Dataset{d}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET PROJECTIONS  %d actual / projection", refYear)))
	fmt.Println()

	for _, d := range sets {
		if d.Len() == 0 {
			fmt.Printf("  %s: no rows\n\n", d.Topic)
			continue
		}
		st := pipeline.Aggregate(d, refYear)
		fmt.Print(cli.RenderTable(cli.DatasetTable(st, refYear, cli.Trends(d))))
		fmt.Println()
	}
	return nil
}
