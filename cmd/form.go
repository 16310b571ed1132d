package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/cli"
	"github.com/theirongolddev/aqsat/internal/tracker"
)

// errNotInteractive is returned when a prompt is needed but stdin is not a terminal.
var errNotInteractive = errors.New("stdin is not a terminal; pass the values as flags")

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// planFields holds the text a plan form edits.
type planFields struct {
	name, creditor, description string
	total, count, start         string
	unit                        string
	keepSchedule                bool
}

func fieldsFrom(req tracker.CreateRequest, dates *calendar.Service) planFields {
	f := planFields{
		name:        req.Name,
		creditor:    req.Creditor,
		description: req.Description,
		unit:        string(calendar.UnitMonth),
	}
	if req.TotalAmount > 0 {
		f.total = strconv.FormatInt(req.TotalAmount, 10)
	}
	if req.InstallmentCount > 0 {
		f.count = strconv.Itoa(req.InstallmentCount)
	}
	if !req.Start.IsZero() {
		f.start = dates.Format(req.Start, calendar.PatternISO)
	} else {
		f.start = dates.Format(dates.Today(), calendar.PatternISO)
	}
	if req.Unit != "" {
		f.unit = string(req.Unit)
	}
	f.keepSchedule = req.Manual()
	return f
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

// runPlanForm prompts for a plan, starting from req. A request that carries
// a manual schedule offers to keep it.
func runPlanForm(title string, req tracker.CreateRequest, dates *calendar.Service) (tracker.CreateRequest, error) {
	if !isInteractive() {
		return tracker.CreateRequest{}, errNotInteractive
	}
	f := fieldsFrom(req, dates)
	hasSchedule := req.Manual()

	details := huh.NewGroup(
		huh.NewInput().Title("Name").Value(&f.name).Validate(notEmpty("name")),
		huh.NewInput().Title("Creditor").Description("Leave empty if unknown").Value(&f.creditor),
		huh.NewText().Title("Notes").Value(&f.description),
		huh.NewInput().Title("Total amount").Value(&f.total).Validate(func(s string) error {
			n, err := cli.ParseAmount(s)
			if err != nil {
				return err
			}
			if n <= 0 {
				return errors.New("must be positive")
			}
			return nil
		}),
	).Title(title)

	keep := huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Keep the existing %d installments?", len(req.Rows))).
			Description("Choose no to generate a new schedule").
			Value(&f.keepSchedule),
	).WithHideFunc(func() bool { return !hasSchedule })

	generated := huh.NewGroup(
		huh.NewInput().Title("Installments").Value(&f.count).Validate(positiveInt),
		huh.NewInput().
			Title("Start date").
			Description(fmt.Sprintf("YYYY-MM-DD, %s calendar; the first payment falls one period later", dates.Calendar.Name())).
			Value(&f.start).
			Validate(func(s string) error {
				_, err := dates.ParseDisplay(s)
				return err
			}),
		huh.NewSelect[string]().
			Title("Every").
			Options(
				huh.NewOption("Month", string(calendar.UnitMonth)),
				huh.NewOption("Week", string(calendar.UnitWeek)),
				huh.NewOption("Day", string(calendar.UnitDay)),
				huh.NewOption("Year", string(calendar.UnitYear)),
			).
			Value(&f.unit),
	).WithHideFunc(func() bool { return hasSchedule && f.keepSchedule })

	if err := huh.NewForm(details, keep, generated).Run(); err != nil {
		return tracker.CreateRequest{}, err
	}
	return f.request(req, dates)
}

// request converts the edited fields back into a create request.
func (f planFields) request(base tracker.CreateRequest, dates *calendar.Service) (tracker.CreateRequest, error) {
	total, err := cli.ParseAmount(f.total)
	if err != nil {
		return tracker.CreateRequest{}, err
	}
	out := tracker.CreateRequest{
		Name:        f.name,
		Creditor:    f.creditor,
		Description: f.description,
		TotalAmount: total,
	}

	if base.Manual() && f.keepSchedule {
		out.Rows = append(out.Rows, base.Rows...)
		out.InstallmentCount = len(base.Rows)
		if total != base.TotalAmount {
			// Re-split evenly; the last row takes the remainder.
			share := total / int64(len(out.Rows))
			for i := range out.Rows {
				out.Rows[i].Amount = share
			}
			out.Rows[len(out.Rows)-1].Amount += total - share*int64(len(out.Rows))
		}
		return out, nil
	}

	if out.InstallmentCount, err = strconv.Atoi(strings.TrimSpace(f.count)); err != nil {
		return tracker.CreateRequest{}, fmt.Errorf("installments: %w", err)
	}
	if out.Start, err = dates.ParseDisplay(f.start); err != nil {
		return tracker.CreateRequest{}, err
	}
	if out.Unit, err = calendar.ParseUnit(f.unit); err != nil {
		return tracker.CreateRequest{}, err
	}
	return out, nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(title, description string) (bool, error) {
	if !isInteractive() {
		return false, errNotInteractive
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
