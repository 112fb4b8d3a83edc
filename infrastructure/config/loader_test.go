package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleProfiles = `
profiles:
  ramp_default:
    bin_size_w: 10
    protocol_type: ramp
    aggregation: median
    loess_frac: 0.25
    smoothing_method: loess
  step_wide_bins:
    bin_size_w: 25
    protocol_type: step
    aggregation: mean
    loess_frac: 0.3
    smoothing_method: savgol
`

func writeTempProfiles(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}
	return path
}

func TestLoadProfiles(t *testing.T) {
	path := writeTempProfiles(t, sampleProfiles)

	pf, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pf.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(pf.Profiles))
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles("/nonexistent/profiles.yaml")
	if err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestResolveKnownProfile(t *testing.T) {
	path := writeTempProfiles(t, sampleProfiles)
	pf, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := pf.Resolve("step_wide_bins")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BinSizeW != 25 {
		t.Errorf("expected bin_size_w 25, got %v", cfg.BinSizeW)
	}
}

func TestResolveUnknownProfile(t *testing.T) {
	path := writeTempProfiles(t, sampleProfiles)
	pf, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = pf.Resolve("does_not_exist")
	if err == nil {
		t.Errorf("expected an error for an unknown profile")
	}
}

func TestResolveInvalidOverrideFails(t *testing.T) {
	path := writeTempProfiles(t, `
profiles:
  broken:
    bin_size_w: 1000
`)
	pf, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = pf.Resolve("broken")
	if err == nil {
		t.Errorf("expected validation failure for an out-of-range override")
	}
}
