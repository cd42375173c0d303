package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/report"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Full dashboard report for the current snapshot",
		Action:  runReport,
	}
}

func runReport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	today, err := todayFrom(c)
	if err != nil {
		return err
	}

	source := newSource(c, cfg, today)
	ctx := c.Context

	snap, err := source.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current snapshot: %w", err)
	}
	if snap.Empty() {
		color.Yellow("No data in current snapshot")
		return nil
	}

	// Two prior months feed the lifetime view; missing months are fine.
	prior1, _ := source.Resolve(ctx, snap.Tag.Prev())
	prior2, _ := source.Resolve(ctx, snap.Tag.Prev().Prev())

	store, closeStore := openStore(cfg)
	defer closeStore()

	builder := report.NewBuilder(
		report.WithConfig(cfg),
		report.WithToday(today),
		report.WithAnnotations(store),
	)
	rep := builder.Build(ctx, snap, prior1, prior2)
	printWarnings(c, rep.Warnings)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range rep.Active {
		status := string(r.Status)
		if r.Status == "Blocked" {
			status = color.RedString(status)
		}
		backlog := ""
		if r.BacklogExists {
			backlog = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Number),
			r.ProjectName,
			r.Squad,
			status,
			string(r.BillingType),
			fmt.Sprintf("%.1f", r.RemainingHours),
			backlog,
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Active Projects (%s)", rep.Tag),
		[]string{"#", "Project", "Squad", "Status", "Billing", "Remaining", "Backlog"},
		rows,
		[]string{
			fmt.Sprintf("Active: %d", rep.KPIs.Active),
			fmt.Sprintf("Critical: %d", rep.KPIs.Critical),
			fmt.Sprintf("Closed: %d", rep.KPIs.Closed),
			fmt.Sprintf("Avg Hours: %.1f", rep.KPIs.AvgHours),
			fmt.Sprintf("Delivery Rate: %d%%", rep.KPIs.DeliveryRate),
			fmt.Sprintf("Avg Lifetime: %.1f d", rep.KPIs.AvgLifetime),
		},
		rep,
	)

	return formatter.Output(table)
}
