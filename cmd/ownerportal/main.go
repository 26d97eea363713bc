// ownerportal — backend for the mineral-interest owner portal.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/segminerals/ownerportal/api"
	"github.com/segminerals/ownerportal/internal/config"
	"github.com/segminerals/ownerportal/internal/forecast"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ownerportal",
	Short: "Mineral-interest owner portal backend",
	Long: `ownerportal serves the mineral-rights owner portal: well maps,
production forecasts, cash-flow economics, and document management,
backed by the analytical warehouse and object storage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(declineCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ownerportal %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		api.Version = version

		srv, err := api.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("server setup failed: %w", err)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting owner portal API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Decline Command ---

var declineCmd = &cobra.Command{
	Use:   "decline [initial-rate] [decline-rate] [b-factor] [periods]",
	Short: "Print an Arps decline curve",
	Long: `Print the monthly production rates of an Arps decline curve.

Examples:
  ownerportal decline 1000 0.08 0 24
  ownerportal decline 1500 0.10 1.1 36`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		qi, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid initial rate %q", args[0])
		}
		di, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid decline rate %q", args[1])
		}
		b, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid b-factor %q", args[2])
		}
		periods, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid period count %q", args[3])
		}

		for i, rate := range forecast.Decline(qi, di, b, periods) {
			fmt.Printf("%4d  %12.3f\n", i+1, rate)
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  ownerportal — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:   %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Warehouse:    %s / %s.%s\n", cfg.Warehouse.Account, cfg.Warehouse.Database, cfg.Warehouse.Schema)
		fmt.Printf("    Price Deck:   %s\n", cfg.Econ.PriceDeck)
		fmt.Printf("    Doc Bucket:   %s (%s)\n", cfg.AWS.DocumentBucket, cfg.AWS.Region)

		auth := "not set"
		if cfg.Auth.JWTSecret != "" {
			auth = "set"
		}
		fmt.Printf("    JWT Secret:   %s\n", auth)

		key := "not set"
		switch {
		case cfg.Warehouse.PrivateKeyPath != "":
			key = "file: " + cfg.Warehouse.PrivateKeyPath
		case cfg.Warehouse.PrivateKeySecretID != "":
			key = "secrets manager: " + cfg.Warehouse.PrivateKeySecretID
		}
		fmt.Printf("    RSA Key:      %s\n", key)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
