package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/analyzer/delivery"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func deliveryCmd() *cli.Command {
	return &cli.Command{
		Name:    "delivery",
		Aliases: []string{"perf"},
		Usage:   "Delivery performance over the fiscal quarter",
		Action:  runDelivery,
	}
}

func runDelivery(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	today, err := todayFrom(c)
	if err != nil {
		return err
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

	analysis := delivery.New(delivery.WithFiscalConfig(cfg.Fiscal)).Analyze(snap)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range analysis.CompletedList {
		due := ""
		if r.HasDueDate() {
			due = r.DueDate.Format("02/01/2006")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Number),
			r.ProjectName,
			r.Squad,
			due,
			r.EndDate.Format("02/01/2006"),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Delivery Performance %s .. %s",
			analysis.WindowStart.Format("02/01/2006"), analysis.WindowEnd.Format("02/01/2006")),
		[]string{"#", "Project", "Squad", "Due", "Delivered"},
		rows,
		[]string{
			fmt.Sprintf("Predicted: %d", analysis.Predicted),
			fmt.Sprintf("Completed: %d", analysis.Completed),
			fmt.Sprintf("On Month: %d", analysis.OnMonth),
			fmt.Sprintf("Success Rate: %d%%", analysis.SuccessRate),
			fmt.Sprintf("Avg Lifetime: %.1f d", analysis.AverageLifetime),
		},
		analysis,
	)

	return formatter.Output(table)
}

func lifetimeCmd() *cli.Command {
	return &cli.Command{
		Name:   "lifetime",
		Usage:  "Average project lifetime over the last three snapshots",
		Action: runLifetime,
	}
}

func runLifetime(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	today, err := todayFrom(c)
	if err != nil {
		return err
	}

	source := newSource(c, cfg, today)
	snap, err := source.Current(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load current snapshot: %w", err)
	}
	printWarnings(c, snap.Warnings)

	prior1, _ := source.Resolve(c.Context, snap.Tag.Prev())
	prior2, _ := source.Resolve(c.Context, snap.Tag.Prev().Prev())

	analysis := delivery.Lifetime(snap, prior1, prior2)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, b := range analysis.Buckets {
		rows = append(rows, []string{b.String(), fmt.Sprintf("%d", b.Count)})
	}

	table := output.NewTable(
		"Project Lifetime Distribution",
		[]string{"Range", "Projects"},
		rows,
		[]string{
			fmt.Sprintf("Projects: %d", len(analysis.Projects)),
			fmt.Sprintf("Mean: %.1f d", analysis.MeanDays),
			fmt.Sprintf("StdDev: %.1f d", analysis.StdDev),
		},
		analysis,
	)

	return formatter.Output(table)
}
