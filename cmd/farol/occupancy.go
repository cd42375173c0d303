package main

import (
	"fmt"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/analyzer/occupancy"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func occupancyCmd() *cli.Command {
	return &cli.Command{
		Name:    "occupancy",
		Aliases: []string{"occ"},
		Usage:   "Squad capacity utilization for the current snapshot",
		Action:  runOccupancy,
	}
}

func runOccupancy(c *cli.Context) error {
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

	analysis := occupancy.New(occupancy.WithCapacity(cfg.Capacity)).Analyze(snap)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, s := range analysis.Squads {
		pct := fmt.Sprintf("%.1f%%", s.OccupationPct)
		if s.OccupationPct >= 100 {
			pct = color.RedString(pct)
		} else if s.OccupationPct >= 80 {
			pct = color.YellowString(pct)
		}
		negative := ""
		if s.HasNegativeHours {
			negative = color.RedString("yes")
		}
		rows = append(rows, []string{
			s.Squad,
			fmt.Sprintf("%d", s.ProjectCount),
			fmt.Sprintf("%.1f", s.AdjustedHours),
			fmt.Sprintf("%.0f", s.Capacity),
			pct,
			fmt.Sprintf("%.1f", s.AvailableHours),
			negative,
		})
	}

	table := output.NewTable(
		"Squad Occupancy",
		[]string{"Squad", "Projects", "Committed", "Capacity", "Occupation", "Available", "Over-Budget"},
		rows,
		nil,
		analysis,
	)

	return formatter.Output(table)
}

func burnrateCmd() *cli.Command {
	return &cli.Command{
		Name:    "burnrate",
		Aliases: []string{"br"},
		Usage:   "Capacity burn rate, per squad or global",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "squad",
				Usage: "Compute for one squad instead of globally",
			},
		},
		Action: runBurnrate,
	}
}

func runBurnrate(c *cli.Context) error {
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

	a := occupancy.New(occupancy.WithCapacity(cfg.Capacity))

	var br *occupancy.BurnRate
	if squad := c.String("squad"); squad != "" {
		br = a.SquadBurnRate(snap, squad)
	} else {
		br = a.GlobalBurnRate(snap)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	scope := br.Squad
	if scope == "" {
		scope = fmt.Sprintf("Global (%d squads)", br.SquadCount)
	}

	table := output.NewTable(
		"Burn Rate",
		[]string{"Scope", "Committed Hours", "Rate"},
		[][]string{{scope, fmt.Sprintf("%.1f", br.AdjustedHours), fmt.Sprintf("%.1f%%", br.Rate)}},
		nil,
		br,
	)

	return formatter.Output(table)
}
