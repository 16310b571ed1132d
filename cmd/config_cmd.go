// Package cmd implements the aqsat CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/config"
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
	cfg, err := config.Load()
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

	fmt.Println("  [General]")
	fmt.Printf("    Database:  %s\n", config.DBPath(cfg))
	fmt.Printf("    Calendar:  %s\n", cfg.General.Calendar)
	if lvl := config.LogLevel(cfg); lvl != "" {
		fmt.Printf("    Log level: %s\n", lvl)
	}
	fmt.Println()

	fmt.Println("  [Currency]")
	fmt.Printf("    Code:     %s\n", cfg.Currency.Code)
	fmt.Printf("    Fraction: %d\n", cfg.Currency.Fraction)
	if cfg.Currency.Label != "" {
		fmt.Printf("    Label:    %s\n", cfg.Currency.Label)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule:      %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Upcoming limit: %d\n", cfg.TUI.UpcomingLimit)
	fmt.Println()

	fmt.Println("  Run `aqsat setup` to reconfigure.")
	return nil
}
