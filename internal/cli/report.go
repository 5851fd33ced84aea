package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tally/internal/core"
	"tally/internal/services"
)

// BudgetLine is a budget status with its category name resolved.
type BudgetLine struct {
	Status   core.BudgetStatus
	Category string
}

// Report is the terminal summary printed by the report command.
type Report struct {
	Stats    services.Stats
	Budgets  []BudgetLine
	Overview core.BudgetOverview
	Trend    []core.TrendPoint
}

// WriteReport renders r as aligned text tables.
func WriteReport(out io.Writer, r Report) error {
	var b strings.Builder

	fmt.Fprintln(&b, TitleStyle.Render(fmt.Sprintf("Ledger summary: %s", r.Stats.Range)))
	fmt.Fprintln(&b, SubtitleStyle.Render(fmt.Sprintf("%s to %s",
		r.Stats.Window.Start.Format("2006-01-02 15:04"),
		r.Stats.Window.End.Format("2006-01-02 15:04"))))
	fmt.Fprintln(&b)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", HeaderStyle.Render("Metric"), HeaderStyle.Render("Amount"), HeaderStyle.Render("vs previous"))
	for _, m := range []core.Metric{core.MetricIncome, core.MetricExpense, core.MetricBalance} {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", m, m.Pick(r.Stats.Totals), changeText(r.Stats.Changes[m]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, TitleStyle.Render("Budgets"))
	if len(r.Budgets) == 0 {
		fmt.Fprintln(&b, SubtitleStyle.Render("No budgets configured."))
	} else {
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			HeaderStyle.Render("Category"), HeaderStyle.Render("Period"),
			HeaderStyle.Render("Spent"), HeaderStyle.Render("Amount"), HeaderStyle.Render("Progress"))
		for _, l := range r.Budgets {
			progress := fmt.Sprintf("%.1f%%", l.Status.Progress)
			switch {
			case l.Status.Exceeded:
				progress = ErrorStyle.Render(progress)
			case l.Status.Progress >= 80:
				progress = WarningStyle.Render(progress)
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\n",
				categoryLabel(l.Category), l.Status.Budget.Period, l.Status.Spent, l.Status.Budget.Amount, progress)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(&b, "Total %.2f of %.2f (%.1f%%), %.2f remaining\n",
			r.Overview.TotalSpent, r.Overview.TotalBudget, r.Overview.Percent, r.Overview.Remaining)
	}

	if len(r.Trend) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, TitleStyle.Render("Trend"))
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", HeaderStyle.Render("Bucket"), HeaderStyle.Render("Income"), HeaderStyle.Render("Expense"))
		for _, p := range r.Trend {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", p.Label, p.Income, p.Expense)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func changeText(c *core.PeriodChange) string {
	if c == nil {
		return "n/a"
	}
	arrow := "down"
	if c.Increased {
		arrow = "up"
	}
	text := fmt.Sprintf("%s %.1f%%", arrow, c.Percent)
	if c.Favorable {
		return SuccessStyle.Render(text)
	}
	return ErrorStyle.Render(text)
}

func categoryLabel(name string) string {
	if name == "" {
		return "Uncategorized"
	}
	return name
}
