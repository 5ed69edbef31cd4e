package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/budgetviz/internal/chart"
	"github.com/theirongolddev/budgetviz/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagPlotWidth  int
	flagPlotHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw the chart as a terminal line graph",
	RunE:  runPlot,
}

func init() {
	def := cli.DefaultPlotConfig()
	plotCmd.Flags().IntVar(&flagPlotWidth, "width", def.Width, "Plot width in columns")
	plotCmd.Flags().IntVar(&flagPlotHeight, "height", def.Height, "Plot height in rows")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadData(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	scene := chart.Render(chart.RenderConfigFrom(cfg), result.Datasets, chart.ColorsFrom(cfg, result.Datasets), requestedView(cfg))

	fmt.Println()
	if scene.FellBack {
		fmt.Printf("  %q is not available; showing %s\n\n", scene.Requested, scene.View)
	}
	out, err := cli.RenderPlot(scene, cli.PlotConfig{Width: flagPlotWidth, Height: flagPlotHeight})
	if errors.Is(err, cli.ErrNothingToPlot) {
		fmt.Printf("  %s: none of the charted categories have data.\n", scene.View)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
