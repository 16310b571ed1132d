package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/model"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Plan details and its installment schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		p, err := s.tracker.Get(args[0])
		if err != nil {
			return err
		}
		dates := s.tracker.Dates()
		today := s.tracker.View().Today

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("PLAN  %s  %s", p.Name, p.ID.Short())))
		fmt.Println()

		creditor := p.Creditor
		if creditor == model.UnspecifiedCreditor {
			creditor = "-"
		}
		info := [][]string{
			{"ID", string(p.ID)},
			{"Status", cli.RenderStatus(p.Status)},
			{"Creditor", creditor},
			{"Total", s.amounts.Format(p.TotalAmount)},
			{"Created", dates.Format(calendar.FromTime(p.CreatedAt), calendar.PatternLong)},
		}
		if p.Description != "" {
			info = append(info, []string{"Notes", cli.Truncate(p.Description, 60)})
		}
		fmt.Print(cli.RenderTable(cli.Table{Rows: info}))

		rows := make([][]string, 0, len(p.Installments))
		for i, inst := range p.Installments {
			when := cli.FormatDaysLeft(today.DaysUntil(inst.DueDate))
			if p.IsPaid() {
				when = "paid"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				dates.Format(inst.DueDate, calendar.PatternLong),
				s.amounts.Format(inst.Amount),
				when,
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:      "Installments",
			Headers:    []string{"#", "Due", "Amount", "When"},
			Rows:       rows,
			RightAlign: []int{0, 2},
		}))
		return nil
	})
}
