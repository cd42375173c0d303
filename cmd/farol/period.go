package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/internal/progress"
	"github.com/farolhq/farol/pkg/analyzer/history"
	"github.com/farolhq/farol/pkg/models"
	"github.com/urfave/cli/v2"
)

func periodCmd() *cli.Command {
	return &cli.Command{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Historical report over a range of monthly snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "First month (YYYY-MM)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Last month (YYYY-MM)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "computed",
				Usage: "Show computed values instead of validated overrides",
			},
		},
		Action: runPeriod,
	}
}

func runPeriod(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	today, err := todayFrom(c)
	if err != nil {
		return err
	}

	from, err := models.ParseMonthTag(c.String("from"))
	if err != nil {
		return err
	}
	to, err := models.ParseMonthTag(c.String("to"))
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("period end %s precedes start %s", to, from)
	}

	if c.Bool("computed") {
		cfg.Validated.Enabled = false
	}

	source := newSource(c, cfg, today)
	months := len(from.Range(to)) + 1 // plus the baseline month
	tracker := progress.NewTracker("Loading snapshots...", months)

	analyzer := history.New(source,
		history.WithConfig(cfg),
		history.WithProgress(tracker.Tick),
	)
	rep, err := analyzer.PeriodReport(c.Context, from, to)
	tracker.FinishSuccess()
	if err != nil {
		return fmt.Errorf("period report failed: %w", err)
	}
	printWarnings(c, rep.Notes)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, m := range rep.Months {
		overridden := ""
		if m.Overridden {
			overridden = "*"
		}
		rows = append(rows, []string{
			m.Label + overridden,
			fmt.Sprintf("%d", m.Closed),
			fmt.Sprintf("%d", m.New),
			fmt.Sprintf("%d", m.OnTime),
			fmt.Sprintf("%d", m.OffTime),
			fmt.Sprintf("%.1f", m.IncrementalHours),
			fmt.Sprintf("%.1f%%", m.OnTimeRate),
			fmt.Sprintf("%.1f", m.AvgLifetimeDays),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Period Report %s", rep.Period.Label),
		[]string{"Month", "Closed", "New", "On Time", "Off Time", "Hours", "On-Time Rate", "Avg Lifetime"},
		rows,
		[]string{
			fmt.Sprintf("Closed: %d", rep.Overall.Closed),
			fmt.Sprintf("New: %d", rep.Overall.New),
			fmt.Sprintf("Hours: %.1f", rep.Overall.WorkedHours),
			fmt.Sprintf("On-Time Rate: %.1f%%", rep.Overall.OnTimeRate),
			fmt.Sprintf("Efficiency: %.1f%%", rep.Overall.Efficiency),
		},
		rep,
	)

	return formatter.Output(table)
}
