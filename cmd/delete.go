package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a plan",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		p, err := s.tracker.Get(args[0])
		if err != nil {
			return err
		}

		if !deleteYes {
			ok, err := confirm(fmt.Sprintf("Delete plan %q?", p.Name), "This cannot be undone.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("  Cancelled.")
				return nil
			}
		}

		_, note, err := s.tracker.DeletePlan(ctx, string(p.ID))
		printNote(note)
		if err != nil {
			return fmt.Errorf("deleting plan: %w", err)
		}
		if note == nil {
			fmt.Printf("  Deleted %q.\n", p.Name)
		}
		return nil
	})
}
