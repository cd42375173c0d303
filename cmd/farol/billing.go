package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/analyzer/billing"
	"github.com/farolhq/farol/pkg/models"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func billingCmd() *cli.Command {
	return &cli.Command{
		Name:  "billing",
		Usage: "List projects billable in a month",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "month",
				Aliases: []string{"m"},
				Usage:   "Billing month (YYYY-MM); defaults to the current month",
			},
		},
		Action: runBilling,
	}
}

func runBilling(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	today, err := todayFrom(c)
	if err != nil {
		return err
	}

	opts := []billing.Option{billing.WithToday(today)}
	if m := c.String("month"); m != "" {
		tag, err := models.ParseMonthTag(m)
		if err != nil {
			return err
		}
		opts = append(opts, billing.WithMonth(tag))
	}

	source := newSource(c, cfg, today)
	snap, err := source.Current(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load current snapshot: %w", err)
	}
	printWarnings(c, snap.Warnings)
	if snap.Empty() {
		color.Yellow("No data in current snapshot")
		return nil
	}

	analysis := billing.New(opts...).Analyze(snap)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range analysis.Records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Number),
			r.Client,
			r.ProjectName,
			string(r.BillingType),
			string(r.Status),
			r.BillingDateStr,
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Billing Due %s", analysis.Month),
		[]string{"#", "Client", "Project", "Billing", "Status", "Billing Date"},
		rows,
		[]string{fmt.Sprintf("Total: %d", analysis.Total)},
		analysis,
	)

	return formatter.Output(table)
}
