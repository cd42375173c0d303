package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/analyzer/active"
	"github.com/farolhq/farol/pkg/analyzer/critical"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func criticalCmd() *cli.Command {
	return &cli.Command{
		Name:    "critical",
		Aliases: []string{"crit"},
		Usage:   "List critical projects (blocked, over-budget, or past due)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "squad",
				Usage: "Restrict to one squad",
			},
		},
		Action: runCritical,
	}
}

func runCritical(c *cli.Context) error {
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

	analysis := critical.New(
		critical.WithToday(today),
		critical.WithFilter(active.Filter{Squad: c.String("squad")}),
	).Analyze(snap)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range analysis.Records {
		due := ""
		if r.HasDueDate() {
			due = r.DueDate.Format("02/01/2006")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Number),
			r.ProjectName,
			r.Squad,
			string(r.Status),
			fmt.Sprintf("%.1f", r.RemainingHours),
			due,
			color.RedString(r.Reason),
		})
	}

	table := output.NewTable(
		"Critical Projects",
		[]string{"#", "Project", "Squad", "Status", "Remaining", "Due", "Reason"},
		rows,
		[]string{fmt.Sprintf("Total: %d", analysis.Total)},
		analysis,
	)

	return formatter.Output(table)
}
