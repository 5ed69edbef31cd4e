package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/source"

	"github.com/spf13/cobra"
)

var flagConvertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <location>",
	Short: "Normalize a CSV, JSON or JSON-lines dataset to a JSON array",
	Long: "Reads a dataset from a local path or URL, validates every record, and writes\n" +
		"it as a JSON array of {year, category, pctgdp} records sorted by year.",
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&flagConvertOut, "out", "o", "-", "Output file, - for stdout")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc := args[0]

	client := source.NewClient(time.Duration(cfg.Sources.TimeoutSec) * time.Second)
	data, err := client.Fetch(cmd.Context(), loc)
	if err != nil {
		return err
	}
	format := source.DetectFormat(loc, data)
	d, err := source.Decode(model.Overview, loc, format, data)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagConvertOut != "-" {
		f, err := os.Create(flagConvertOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := source.EncodeJSON(w, pipeline.SortByYear(d.Observations)); err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Converted %d %s records (%d categories)\n", d.Len(), format, len(d.Categories()))
	}
	return nil
}
