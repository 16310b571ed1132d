package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List plans, optionally filtered by status or text",
	RunE:    runList,
}

var (
	listStatus string
	listSearch string
	listFuzzy  bool
)

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "all", "Filter: all, upcoming, past (overdue), paid")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Match name, creditor or description")
	listCmd.Flags().BoolVar(&listFuzzy, "fuzzy", false, "Fuzzy search")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	filter, err := pipeline.ParseFilter(listStatus)
	if err != nil {
		return err
	}

	return withSession(cmd, func(_ context.Context, s *session) error {
		view := s.tracker.View()
		dates := s.tracker.Dates()
		plans := s.tracker.Query(filter, listSearch, listFuzzy)

		if len(plans) == 0 {
			if len(view.Plans) == 0 {
				fmt.Println("\n  No plans yet.")
			} else {
				fmt.Println("\n  No plans match.")
			}
			return nil
		}

		rows := make([][]string, 0, len(plans))
		var total int64
		for _, p := range plans {
			next := "-"
			if inst, ok := pipeline.NextDue(p, view.Today); ok && !p.IsPaid() {
				next = dates.Format(inst.DueDate, calendar.PatternISO)
			}
			rows = append(rows, []string{
				p.ID.Short(),
				cli.Truncate(p.Name, 24),
				cli.Truncate(p.Creditor, 18),
				s.amounts.Format(p.TotalAmount),
				next,
				cli.RenderStatus(p.Status),
			})
			total += p.TotalAmount
		}
		rows = append(rows,
			[]string{"---"},
			[]string{"", fmt.Sprintf("%d plans", len(plans)), "", s.amounts.Format(total), "", ""},
		)

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:      fmt.Sprintf("%s plans", filter.Label()),
			Headers:    []string{"ID", "Name", "Creditor", "Total", "Next due", "Status"},
			Rows:       rows,
			RightAlign: []int{3},
		}))
		return nil
	})
}
