// Package cmd implements the budgetviz CLI commands.
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Sources]")
	for _, v := range model.Views {
		loc := cfg.SourceFor(v)
		if loc == "" {
			loc = "not configured"
		}
		fmt.Printf("    %-9s %s\n", string(v)+":", loc)
	}
	fmt.Printf("    Timeout:  %ds\n", cfg.Sources.TimeoutSec)
	fmt.Println()

	c := cfg.Chart
	fmt.Println("  [Chart]")
	fmt.Printf("    Size:           %dx%d\n", c.Width, c.Height)
	fmt.Printf("    Margin:         top %d, right %d, bottom %d, left %d\n",
		c.Margin.Top, c.Margin.Right, c.Margin.Bottom, c.Margin.Left)
	fmt.Printf("    Reference year: %d\n", c.ReferenceYear)
	fmt.Printf("    Tooltip hide:   %dms\n", c.TooltipHideMS)
	fmt.Printf("    Reveal:         %dms\n", c.RevealMS)
	fmt.Printf("    Default view:   %s\n", c.DefaultView)
	fmt.Println()

	fmt.Println("  [Views]")
	for _, v := range model.Views {
		fmt.Printf("    %-9s %s\n", string(v)+":", strings.Join(cfg.Categories(v), ", "))
	}
	fmt.Println()

	if len(cfg.Colors) > 0 {
		fmt.Println("  [Colors]")
		names := make([]string, 0, len(cfg.Colors))
		for name := range cfg.Colors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("    %s = %s\n", name, cfg.Colors[name])
		}
		fmt.Println()
	}

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  Run `budgetviz setup` to reconfigure.")
	return nil
}
