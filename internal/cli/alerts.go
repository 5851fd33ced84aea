package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"tally/internal/storage"
)

// WriteAlerts renders the recorded budget alerts, newest first.
func WriteAlerts(out io.Writer, alerts []storage.AlertRecord) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(out, SubtitleStyle.Render("No budget alerts recorded."))
		return err
	}

	fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf("Budget alerts (%d)", len(alerts))))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Recorded"), HeaderStyle.Render("Category"), HeaderStyle.Render("Period"),
		HeaderStyle.Render("Window"), HeaderStyle.Render("Spent"), HeaderStyle.Render("Amount"))
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s..%s\t%s\t%.2f\n",
			a.CreatedAt.Format("2006-01-02 15:04"),
			categoryLabel(a.CategoryName),
			a.Period,
			a.Window.Start.Format(time.DateOnly), a.Window.End.Format(time.DateOnly),
			ErrorStyle.Render(fmt.Sprintf("%.2f", a.Spent)),
			a.Amount)
	}
	return tw.Flush()
}
