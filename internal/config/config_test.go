package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("api.port default = %d, want 8080", cfg.API.Port)
	}
	if cfg.Warehouse.Database != "WELLS" || cfg.Warehouse.Schema != "MINERALS" {
		t.Errorf("warehouse defaults = %s.%s, want WELLS.MINERALS",
			cfg.Warehouse.Database, cfg.Warehouse.Schema)
	}
	if cfg.Econ.GasShrinkFactor != 0.9 {
		t.Errorf("gas_shrink_factor default = %v, want 0.9", cfg.Econ.GasShrinkFactor)
	}
	if cfg.Econ.NGLYieldPerMMCF != 10.0 {
		t.Errorf("ngl_yield_per_mmcf default = %v, want 10", cfg.Econ.NGLYieldPerMMCF)
	}
	if cfg.Econ.OilSevTaxRate != 0.046 || cfg.Econ.GasSevTaxRate != 0.075 {
		t.Errorf("severance defaults = %v/%v, want 0.046/0.075",
			cfg.Econ.OilSevTaxRate, cfg.Econ.GasSevTaxRate)
	}
	if cfg.Econ.AdValoremRate != 0.02 {
		t.Errorf("ad_valorem_rate default = %v, want 0.02", cfg.Econ.AdValoremRate)
	}
	if cfg.Econ.NRIAfterTax {
		t.Error("nri_after_tax should default to false (pre-tax mode)")
	}
}

func TestLegacyEnvOverrides(t *testing.T) {
	t.Setenv("SF_ACCOUNT", "XY12345")
	t.Setenv("SNOWFLAKE_USER", "PORTAL_SVC")
	t.Setenv("SNOWFLAKE_KEY_PATH", "/keys/rsa_key.pem")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Warehouse.Account != "XY12345" {
		t.Errorf("account = %q, want legacy SF_ACCOUNT value", cfg.Warehouse.Account)
	}
	if cfg.Warehouse.User != "PORTAL_SVC" {
		t.Errorf("user = %q, want SNOWFLAKE_USER value", cfg.Warehouse.User)
	}
	if cfg.Warehouse.PrivateKeyPath != "/keys/rsa_key.pem" {
		t.Errorf("private key path = %q, want SNOWFLAKE_KEY_PATH value", cfg.Warehouse.PrivateKeyPath)
	}
}

func TestEnvAliasPrecedence(t *testing.T) {
	// SNOWFLAKE_* is checked before SF_*.
	t.Setenv("SNOWFLAKE_ACCOUNT", "PRIMARY")
	t.Setenv("SF_ACCOUNT", "FALLBACK")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Warehouse.Account != "PRIMARY" {
		t.Errorf("account = %q, want PRIMARY", cfg.Warehouse.Account)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  port: 9090
econ:
  nri_after_tax: true
  gas_shrink_factor: 0.85
warehouse:
  account: FILEACCT
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("api.port = %d, want 9090", cfg.API.Port)
	}
	if !cfg.Econ.NRIAfterTax {
		t.Error("nri_after_tax should be true from file")
	}
	if cfg.Econ.GasShrinkFactor != 0.85 {
		t.Errorf("gas_shrink_factor = %v, want 0.85", cfg.Econ.GasShrinkFactor)
	}
	// Untouched values keep their defaults.
	if cfg.Econ.GasSevTaxRate != 0.075 {
		t.Errorf("gas_sev_tax_rate = %v, want default 0.075", cfg.Econ.GasSevTaxRate)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile on a missing file should error")
	}
}
