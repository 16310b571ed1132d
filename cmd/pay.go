package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/cli"
)

var payCmd = &cobra.Command{
	Use:   "pay <id>",
	Short: "Mark a plan as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		before, err := s.tracker.Get(args[0])
		if err != nil {
			return err
		}
		if before.IsPaid() {
			fmt.Printf("  Plan %q is already paid.\n", before.Name)
			return nil
		}

		p, note, err := s.tracker.MarkPaid(ctx, args[0])
		if p.ID == "" && err != nil {
			return err
		}
		printNote(note)
		if err != nil {
			return fmt.Errorf("saving plan: %w", err)
		}
		fmt.Printf("  %s  %s settled\n", cli.RenderMuted(p.ID.Short()), s.amounts.Format(p.TotalAmount))
		return nil
	})
}
