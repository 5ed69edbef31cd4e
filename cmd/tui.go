package cmd

import (
	"fmt"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/pipeline"
	"github.com/theirongolddev/budgetviz/internal/tui"
	"github.com/theirongolddev/budgetviz/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chart",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Config:  cfg,
		Sources: pipeline.Sources(cfg),
		View:    requestedView(cfg),
		NoCache: flagNoCache,
		Offline: flagOffline,
		Setup:   !config.Exists() && flagOverview == "",
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
