package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/tracker"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a plan",
	Long: `Edit a plan in a form pre-filled with its current values.

The plan is replaced by a new one with a new id. A status of paid is not
carried over. If the new values are rejected the original is kept as it was.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		p, err := s.tracker.Get(args[0])
		if err != nil {
			return err
		}
		if !isInteractive() {
			return errNotInteractive
		}

		// Collect the new values before touching the store so an aborted
		// form leaves the plan in place.
		req, err := runPlanForm("Edit plan", tracker.RequestFrom(p), s.tracker.Dates())
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Cancelled; the plan is unchanged.")
			return nil
		}
		if err != nil {
			return err
		}

		if _, _, err := s.tracker.EditPlan(ctx, string(p.ID)); err != nil {
			return err
		}
		if err := createAndReport(ctx, s, req); err != nil {
			if !errors.Is(err, model.ErrValidation) {
				return err
			}
			// The edited values were rejected; put the original back as it was.
			if _, restoreErr := s.tracker.RestorePlan(ctx, p); restoreErr != nil {
				return fmt.Errorf("%w (restoring the original also failed: %v)", err, restoreErr)
			}
			return err
		}
		return nil
	})
}
