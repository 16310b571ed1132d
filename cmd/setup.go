package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	if !isInteractive() {
		return errNotInteractive
	}

	// Load existing config or defaults
	cfg, _ := config.Load()
	dbPath := cfg.General.DBPath
	if dbPath == "" {
		dbPath = config.DBPath(cfg)
	}

	fmt.Println()
	fmt.Println("  Welcome to aqsat!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Display calendar").
				Options(
					huh.NewOption("Persian (Jalali)", calendar.NameJalali),
					huh.NewOption("Gregorian", calendar.NameGregorian),
				).
				Value(&cfg.General.Calendar),
			huh.NewInput().
				Title("Currency code").
				Description("ISO 4217, e.g. IRR, EUR, USD").
				Value(&cfg.Currency.Code).
				Validate(notEmpty("currency code")),
			huh.NewInput().
				Title("Currency label").
				Description("Printed after amounts instead of the code; optional").
				Value(&cfg.Currency.Label),
			huh.NewInput().
				Title("Database file").
				Value(&dbPath).
				Validate(notEmpty("database file")),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Currency.Code = strings.ToUpper(strings.TrimSpace(cfg.Currency.Code))
	if dbPath = strings.TrimSpace(dbPath); dbPath != config.DBPath(config.DefaultConfig()) {
		cfg.General.DBPath = dbPath
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `aqsat setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
