package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/cli"
	"tally/internal/period"
	"tally/internal/services"
	"tally/internal/trend"
)

func reportCmd() *cobra.Command {
	var (
		periodName  string
		granularity string
		from, to    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print statistics, budgets and the trend for a period",
		Example: `  tally report
  tally report --period year --granularity year
  tally report --from 2025-01-01 --to 2025-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			span, err := reportSpan(periodName, from, to)
			if err != nil {
				return err
			}

			ledger, res, err := openLedger(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeBackend(res)

			now := time.Now()
			r := cli.Report{
				Stats:    ledger.Stats(span, now),
				Overview: ledger.BudgetOverview(now),
				Trend:    ledger.Trend(trend.ParseGranularity(granularity), now),
			}
			for _, st := range ledger.BudgetStatuses(now) {
				line := cli.BudgetLine{Status: st}
				if c, ok := ledger.Reader().Category(st.Budget.CategoryID); ok {
					line.Category = c.Name
				}
				r.Budgets = append(r.Budgets, line)
			}
			return cli.WriteReport(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().StringVarP(&periodName, "period", "p", string(period.Month), "period to summarize (today, week, month, year)")
	cmd.Flags().StringVarP(&granularity, "granularity", "g", string(trend.Month), "trend granularity (week, month, year)")
	cmd.Flags().StringVar(&from, "from", "", "custom period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "custom period end (YYYY-MM-DD), inclusive")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

func reportSpan(name, from, to string) (services.Span, error) {
	if from == "" {
		return services.Span{Range: period.ParseRange(name)}, nil
	}
	loc := cfg.Location()
	start, err := time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return services.Span{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return services.Span{}, fmt.Errorf("invalid --to: %w", err)
	}
	if end.Before(start) {
		return services.Span{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return services.Span{Range: period.Custom, Start: start, End: period.EndOfDay(end)}, nil
}
