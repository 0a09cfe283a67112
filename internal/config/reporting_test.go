package config

import "testing"

func TestReportingConfigIsFixedAsset(t *testing.T) {
	cfg := DefaultReportingConfig()
	if !cfg.IsFixedAsset("fixed_asset_purchase") {
		t.Fatalf("expected case-insensitive fixed asset match")
	}
	if cfg.IsFixedAsset("SALES") {
		t.Fatalf("expected SALES not to be a fixed asset category")
	}
}

func TestValidateReportingConfig(t *testing.T) {
	cfg := DefaultReportingConfig()
	if err := validateReportingConfig(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.AdvanceMarker = "  "
	if err := validateReportingConfig(cfg); err == nil {
		t.Fatalf("expected empty marker to be rejected")
	}
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *ReportingConfigHolder
	if got := holder.Get().AdvanceWindowMinutes; got != 5 {
		t.Fatalf("expected default window 5, got %d", got)
	}
}
