package tui

import (
	"testing"

	"github.com/theirongolddev/budgetviz/internal/config"
)

func TestSetupValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Chart.DefaultView = "revenue"
	cfg.Appearance.Theme = "Tokyo-Night"

	v := SetupValuesFrom(cfg)
	if v.View != "Revenue" || v.Theme != "tokyo-night" {
		t.Fatalf("seeded values = %+v", v)
	}

	v.Overview = "  https://example.com/overview.json "
	v.Revenue = ""
	v.Apply(&cfg)
	if cfg.Sources.Overview != "https://example.com/overview.json" {
		t.Errorf("overview = %q", cfg.Sources.Overview)
	}
	if cfg.Sources.Revenue != "" || cfg.Chart.DefaultView != "Revenue" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestRequiredSource(t *testing.T) {
	if requiredSource("  ") == nil {
		t.Error("blank overview source accepted")
	}
	if requiredSource("data/overview.json") != nil {
		t.Error("valid overview source rejected")
	}
}
