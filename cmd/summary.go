package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Debt totals and the next payments due",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		view := s.tracker.View()
		dates := s.tracker.Dates()

		fmt.Println()
		fmt.Println(cli.RenderTitle("AQSAT  " + dates.Format(view.Today, calendar.PatternFull)))
		fmt.Println()

		if n := view.Notification(); n != nil {
			fmt.Println(cli.RenderNotification(n))
			fmt.Println()
		}

		if len(view.Plans) == 0 {
			fmt.Println("  No plans yet.")
			fmt.Println("  Add one with `aqsat add`.")
			return nil
		}

		sum := view.Summary
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Outstanding", s.amounts.Format(sum.TotalOutstanding)},
				{"Upcoming installments", cli.FormatNumber(int64(sum.UpcomingCount))},
				{"Overdue installments", cli.FormatNumber(int64(sum.OverdueCount))},
				{"Paid plans", fmt.Sprintf("%d of %d", sum.PaidCount, len(view.Plans))},
			},
			RightAlign: []int{1},
		}))

		if len(view.Upcoming) == 0 {
			fmt.Println()
			fmt.Println(cli.RenderMuted("  No upcoming payments."))
			return nil
		}

		rows := make([][]string, 0, len(view.Upcoming))
		for _, item := range view.Upcoming {
			rows = append(rows, []string{
				item.Plan.ID.Short(),
				cli.Truncate(item.Plan.Name, 28),
				dates.Format(item.Next.DueDate, calendar.PatternLong),
				s.amounts.Format(item.Next.Amount),
				cli.FormatDaysLeft(item.DaysLeft),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:      "Upcoming payments",
			Headers:    []string{"ID", "Plan", "Due", "Amount", "When"},
			Rows:       rows,
			RightAlign: []int{3},
		}))

		if at, err := s.db.UpdatedAt(ctx, store.KeyPayments); err == nil && !at.IsZero() {
			fmt.Println()
			fmt.Println(cli.RenderMuted("  Last saved " + at.Local().Format(time.DateTime)))
		}
		return nil
	})
}
