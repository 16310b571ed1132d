package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change reminder and display settings",
	Long: `Show or change the settings stored alongside the plans.

Without flags the current settings are printed.`,
	Example: `  aqsat settings --days 5
  aqsat settings --notify=false
  aqsat settings --theme dark --font sahel`,
	RunE: runSettings,
}

var (
	settingsDays   int
	settingsNotify bool
	settingsTheme  string
	settingsFont   string
)

func init() {
	settingsCmd.Flags().IntVar(&settingsDays, "days", 0, "Reminder lead time in days")
	settingsCmd.Flags().BoolVar(&settingsNotify, "notify", true, "Enable reminders and notifications")
	settingsCmd.Flags().StringVar(&settingsTheme, "theme", "", "Theme: "+joinNames(model.Themes))
	settingsCmd.Flags().StringVar(&settingsFont, "font", "", "Font: "+joinNames(model.Fonts))
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		cur := s.tracker.Settings()
		flags := cmd.Flags()
		if !flags.Changed("days") && !flags.Changed("notify") && !flags.Changed("theme") && !flags.Changed("font") {
			printSettings(cur)
			return nil
		}

		next := cur
		if flags.Changed("days") {
			next.NotificationDays = settingsDays
		}
		if flags.Changed("notify") {
			next.NotificationsEnabled = settingsNotify
		}
		if flags.Changed("theme") {
			next.Theme = model.Theme(strings.ToLower(strings.TrimSpace(settingsTheme)))
		}
		if flags.Changed("font") {
			next.Font = model.Font(strings.ToLower(strings.TrimSpace(settingsFont)))
		}

		note, err := s.tracker.SaveSettings(ctx, next)
		if err != nil {
			return err
		}
		printNote(note)
		printSettings(s.tracker.Settings())
		return nil
	})
}

func printSettings(st model.Settings) {
	fmt.Println()
	fmt.Println("  [Settings]")
	fmt.Printf("    Reminder lead days: %d\n", st.NotificationDays)
	fmt.Printf("    Notifications:      %v\n", st.NotificationsEnabled)
	fmt.Printf("    Theme:              %s\n", st.Theme)
	fmt.Printf("    Font:               %s\n", st.Font)
	fmt.Println()
}

func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
