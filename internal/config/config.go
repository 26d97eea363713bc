// Package config handles configuration loading for the owner portal.
// It supports YAML config files with environment variable overrides,
// including the legacy SNOWFLAKE_*/SF_* variables the deployment
// already sets for the warehouse connection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Warehouse WarehouseConfig `mapstructure:"warehouse" yaml:"warehouse"`
	AWS       AWSConfig       `mapstructure:"aws"       yaml:"aws"`
	Auth      AuthConfig      `mapstructure:"auth"      yaml:"auth"`
	Econ      EconConfig      `mapstructure:"econ"      yaml:"econ"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// WarehouseConfig holds the analytical-warehouse (Snowflake) connection
// settings. Authentication is RSA key-pair: the PEM key comes from a file
// path or, failing that, from AWS Secrets Manager.
type WarehouseConfig struct {
	Account   string `mapstructure:"account"   yaml:"account"`
	User      string `mapstructure:"user"      yaml:"user"`
	Warehouse string `mapstructure:"warehouse" yaml:"warehouse"`
	Database  string `mapstructure:"database"  yaml:"database"`
	Schema    string `mapstructure:"schema"    yaml:"schema"`
	Role      string `mapstructure:"role"      yaml:"role"`

	PrivateKeyPath       string `mapstructure:"private_key_path"       yaml:"private_key_path"`
	PrivateKeySecretID   string `mapstructure:"private_key_secret_id"  yaml:"private_key_secret_id"`
	PrivateKeyPassphrase string `mapstructure:"private_key_passphrase" yaml:"private_key_passphrase"`
}

// AWSConfig holds object-storage settings for document uploads.
type AWSConfig struct {
	Region            string `mapstructure:"region"              yaml:"region"`
	DocumentBucket    string `mapstructure:"document_bucket"     yaml:"document_bucket"`
	UploadURLTTLSec   int    `mapstructure:"upload_url_ttl_sec"  yaml:"upload_url_ttl_sec"`
	DownloadURLTTLSec int    `mapstructure:"download_url_ttl_sec" yaml:"download_url_ttl_sec"`
}

// AuthConfig holds bearer-token validation settings. Token issuance is
// the identity provider's job; the portal only verifies.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// EconConfig holds the economic assumptions applied by the economics
// engine. Every value has a documented default; deployments override per
// operating area.
type EconConfig struct {
	// PriceDeck names the forward deck blended with historical actuals.
	PriceDeck string `mapstructure:"price_deck" yaml:"price_deck"`

	NRIAfterTax bool `mapstructure:"nri_after_tax" yaml:"nri_after_tax"` // default false: scale volumes pre-tax

	GasShrinkFactor float64 `mapstructure:"gas_shrink_factor" yaml:"gas_shrink_factor"` // fraction of gas surviving processing
	NGLYieldPerMMCF float64 `mapstructure:"ngl_yield_per_mmcf" yaml:"ngl_yield_per_mmcf"` // BBL NGL per MMCF shrunk gas

	OilBasisPct float64 `mapstructure:"oil_basis_pct" yaml:"oil_basis_pct"`
	OilBasisAmt float64 `mapstructure:"oil_basis_amt" yaml:"oil_basis_amt"`
	GasBasisPct float64 `mapstructure:"gas_basis_pct" yaml:"gas_basis_pct"`
	GasBasisAmt float64 `mapstructure:"gas_basis_amt" yaml:"gas_basis_amt"`
	NGLBasisPct float64 `mapstructure:"ngl_basis_pct" yaml:"ngl_basis_pct"` // applied to the gas price index
	NGLBasisAmt float64 `mapstructure:"ngl_basis_amt" yaml:"ngl_basis_amt"`

	OilGPTRate float64 `mapstructure:"oil_gpt_rate" yaml:"oil_gpt_rate"` // $/BBL
	GasGPTRate float64 `mapstructure:"gas_gpt_rate" yaml:"gas_gpt_rate"` // $/MCF
	NGLGPTRate float64 `mapstructure:"ngl_gpt_rate" yaml:"ngl_gpt_rate"` // $/BBL
	OilOPTRate float64 `mapstructure:"oil_opt_rate" yaml:"oil_opt_rate"`
	GasOPTRate float64 `mapstructure:"gas_opt_rate" yaml:"gas_opt_rate"`
	NGLOPTRate float64 `mapstructure:"ngl_opt_rate" yaml:"ngl_opt_rate"`

	OilSevTaxRate float64 `mapstructure:"oil_sev_tax_rate" yaml:"oil_sev_tax_rate"`
	GasSevTaxRate float64 `mapstructure:"gas_sev_tax_rate" yaml:"gas_sev_tax_rate"`
	NGLSevTaxRate float64 `mapstructure:"ngl_sev_tax_rate" yaml:"ngl_sev_tax_rate"`
	AdValoremRate float64 `mapstructure:"ad_valorem_rate"  yaml:"ad_valorem_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.ownerportal/config.yaml (home directory)
//  3. /etc/ownerportal/config.yaml (system)
//
// Environment variables override config file values.
// Format: OWNERPORTAL_<SECTION>_<KEY>, e.g., OWNERPORTAL_WAREHOUSE_ACCOUNT.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".ownerportal"))
	v.AddConfigPath("/etc/ownerportal")

	v.SetEnvPrefix("OWNERPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("OWNERPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Warehouse defaults (schema names match the analytical warehouse)
	v.SetDefault("warehouse.warehouse", "COMPUTE_WH")
	v.SetDefault("warehouse.database", "WELLS")
	v.SetDefault("warehouse.schema", "MINERALS")
	v.SetDefault("warehouse.private_key_secret_id", "seg-user-app/snowflake-rsa-key")

	// AWS defaults
	v.SetDefault("aws.region", "us-east-2")
	v.SetDefault("aws.document_bucket", "seg-user-document-uploads")
	v.SetDefault("aws.upload_url_ttl_sec", 600) // 10 minutes
	v.SetDefault("aws.download_url_ttl_sec", 90)

	// Economic assumption defaults
	v.SetDefault("econ.price_deck", "STRIP")
	v.SetDefault("econ.nri_after_tax", false)
	v.SetDefault("econ.gas_shrink_factor", 0.9)
	v.SetDefault("econ.ngl_yield_per_mmcf", 10.0)
	v.SetDefault("econ.oil_basis_pct", 1.0)
	v.SetDefault("econ.gas_basis_pct", 1.0)
	v.SetDefault("econ.ngl_basis_pct", 1.0)
	v.SetDefault("econ.oil_sev_tax_rate", 0.046)
	v.SetDefault("econ.gas_sev_tax_rate", 0.075)
	v.SetDefault("econ.ngl_sev_tax_rate", 0.046)
	v.SetDefault("econ.ad_valorem_rate", 0.02)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads sensitive or legacy environment variables that do
// not follow the OWNERPORTAL_ prefix scheme. The deployment predates this
// service and already exports SNOWFLAKE_*/SF_* names, so both spellings
// are honored, first match wins.
func overrideFromEnv(cfg *Config) {
	if v := firstEnv("SNOWFLAKE_ACCOUNT", "SF_ACCOUNT"); v != "" {
		cfg.Warehouse.Account = v
	}
	if v := firstEnv("SNOWFLAKE_USER", "SF_USER"); v != "" {
		cfg.Warehouse.User = v
	}
	if v := firstEnv("SNOWFLAKE_WAREHOUSE", "SF_WAREHOUSE"); v != "" {
		cfg.Warehouse.Warehouse = v
	}
	if v := firstEnv("SNOWFLAKE_DATABASE", "SF_DATABASE"); v != "" {
		cfg.Warehouse.Database = v
	}
	if v := firstEnv("SNOWFLAKE_SCHEMA", "SF_SCHEMA"); v != "" {
		cfg.Warehouse.Schema = v
	}
	if v := firstEnv("SNOWFLAKE_ROLE", "SF_ROLE"); v != "" {
		cfg.Warehouse.Role = v
	}
	if v := firstEnv("SNOWFLAKE_PRIVATE_KEY_PATH", "SNOWFLAKE_KEY_PATH", "SF_PRIVATE_KEY_PATH"); v != "" {
		cfg.Warehouse.PrivateKeyPath = v
	}
	if v := firstEnv("SNOWFLAKE_PRIVATE_KEY_SECRET_ID"); v != "" {
		cfg.Warehouse.PrivateKeySecretID = v
	}
	if v := firstEnv("SNOWFLAKE_PRIVATE_KEY_PASSPHRASE", "SNOWFLAKE_KEY_PASSPHRASE", "SF_PRIVATE_KEY_PASSPHRASE"); v != "" {
		cfg.Warehouse.PrivateKeyPassphrase = v
	}
	if v := os.Getenv("OWNERPORTAL_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" && cfg.AWS.Region == "" {
		cfg.AWS.Region = v
	}
}

// firstEnv returns the first non-empty environment variable from names.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
