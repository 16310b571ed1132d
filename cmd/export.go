package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write all plans to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all plans with the contents of a JSON file",
	Long: `Replace all plans with the contents of a JSON file written by export.

The file is checked first; if any plan in it is invalid nothing changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importYes bool

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		n, err := s.tracker.Export(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Exported %d plans to %s\n", n, args[0])
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if existing := len(s.tracker.View().Plans); existing > 0 && !importYes {
			ok, err := confirm(
				fmt.Sprintf("Replace %d existing plans?", existing),
				"Export them first if you want a copy.",
			)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("  Cancelled.")
				return nil
			}
		}

		n, note, err := s.tracker.Import(ctx, args[0])
		if err != nil && n == 0 {
			return err
		}
		printNote(note)
		if err != nil {
			return fmt.Errorf("saving plans: %w", err)
		}
		if note == nil {
			fmt.Printf("  Imported %d plans from %s\n", n, args[0])
		}
		return nil
	})
}
