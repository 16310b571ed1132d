package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/model"
	"github.com/theirongolddev/aqsat/internal/schedule"
	"github.com/theirongolddev/aqsat/internal/tracker"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an installment plan",
	Long: `Add an installment plan.

With --name and --total the plan is created from flags. The schedule is either
generated (--count, --start, --every) or given row by row with repeated
--date flags and matching --amount flags; a row without an amount takes an
even share of the total. Without --name an interactive form is shown.

Dates are YYYY-MM-DD in the display calendar.`,
	Example: `  aqsat add --name Laptop --creditor Bank --total 36,000,000 --count 12 --start 1403-01-15
  aqsat add --name Rent --total 300 --date 1403-02-01 --date 1403-03-01 --amount 100 --amount 200`,
	RunE: runAdd,
}

var (
	addName        string
	addCreditor    string
	addDescription string
	addTotal       string
	addCount       int
	addStart       string
	addEvery       string
	addDates       []string
	addAmounts     []string
)

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Plan name")
	addCmd.Flags().StringVarP(&addCreditor, "creditor", "c", "", "Who the plan is owed to")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Free-form notes")
	addCmd.Flags().StringVarP(&addTotal, "total", "t", "", "Total amount")
	addCmd.Flags().IntVar(&addCount, "count", 0, "Number of installments to generate")
	addCmd.Flags().StringVar(&addStart, "start", "", "Start date; the first installment falls one period later (default today)")
	addCmd.Flags().StringVar(&addEvery, "every", "month", "Spacing: day, week, month or year")
	addCmd.Flags().StringArrayVar(&addDates, "date", nil, "Manual installment date (repeatable)")
	addCmd.Flags().StringArrayVar(&addAmounts, "amount", nil, "Manual installment amount, matched to --date by position (repeatable)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		var (
			req tracker.CreateRequest
			err error
		)
		if !cmd.Flags().Changed("name") {
			req, err = runPlanForm("New plan", tracker.CreateRequest{}, s.tracker.Dates())
		} else {
			req, err = requestFromFlags(s.tracker.Dates())
		}
		if err != nil {
			return err
		}
		return createAndReport(ctx, s, req)
	})
}

func requestFromFlags(dates *calendar.Service) (tracker.CreateRequest, error) {
	req := tracker.CreateRequest{
		Name:             addName,
		Creditor:         addCreditor,
		Description:      addDescription,
		InstallmentCount: addCount,
	}
	if addTotal != "" {
		total, err := cli.ParseAmount(addTotal)
		if err != nil {
			return req, fmt.Errorf("--total: %w", err)
		}
		req.TotalAmount = total
	}

	if len(addAmounts) > len(addDates) {
		return req, &model.ValidationError{Field: "amount", Reason: "each --amount needs a --date"}
	}
	if len(addDates) > 0 {
		for i, raw := range addDates {
			d, err := dates.ParseDisplay(raw)
			if err != nil {
				return req, fmt.Errorf("--date %q: %w", raw, err)
			}
			row := schedule.Row{Date: d}
			if i < len(addAmounts) {
				if row.Amount, err = cli.ParseAmount(addAmounts[i]); err != nil {
					return req, fmt.Errorf("--amount %q: %w", addAmounts[i], err)
				}
			}
			req.Rows = append(req.Rows, row)
		}
		return req, nil
	}

	unit, err := calendar.ParseUnit(addEvery)
	if err != nil {
		return req, err
	}
	req.Unit = unit
	req.Start = dates.Today()
	if addStart != "" {
		if req.Start, err = dates.ParseDisplay(addStart); err != nil {
			return req, fmt.Errorf("--start: %w", err)
		}
	}
	return req, nil
}

func createAndReport(ctx context.Context, s *session, req tracker.CreateRequest) error {
	p, note, err := s.tracker.CreatePlan(ctx, req)
	if p.ID == "" && err != nil {
		return err
	}
	printNote(note)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	dates := s.tracker.Dates()
	first, last := p.Installments[0], p.Installments[len(p.Installments)-1]
	fmt.Printf("  %s  %d installments, %s to %s\n",
		cli.RenderMuted(p.ID.Short()),
		len(p.Installments),
		dates.Format(first.DueDate, calendar.PatternLong),
		dates.Format(last.DueDate, calendar.PatternLong))
	return nil
}

// printNote prints a mutation notification, if there is one.
func printNote(n *model.Notification) {
	if n == nil {
		return
	}
	fmt.Println()
	fmt.Println("  " + cli.RenderNotification(n))
}
