package main

import (
	"fmt"
	"strconv"

	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/annotations"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func statusReportCmd() *cli.Command {
	return &cli.Command{
		Name:      "status-report",
		Aliases:   []string{"sr"},
		Usage:     "Status report for a single project",
		ArgsUsage: "<project-number>",
		Action:    runStatusReport,
	}
}

func runStatusReport(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one project number argument")
	}
	number, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid project number %q: %w", c.Args().First(), err)
	}

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

	rec, ok := snap.ByNumber()[number]
	if !ok {
		return fmt.Errorf("project %d not found in snapshot %s", number, snap.Tag)
	}

	store, closeStore := openStore(cfg)
	defer closeStore()

	view := annotations.NewJoiner(store).Report(c.Context, rec, today)
	printWarnings(c, view.Warnings)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText {
		return formatter.Output(view)
	}
	return renderStatusReport(formatter, view)
}

func renderStatusReport(f *output.Formatter, view *annotations.StatusReportView) error {
	w := f.Writer()
	rec := view.Record

	title := fmt.Sprintf("#%d %s", rec.Number, rec.ProjectName)
	if f.Colored() {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintf(w, "Client: %s | Squad: %s | Specialist: %s\n", rec.Client, rec.Squad, rec.Specialist)
	fmt.Fprintf(w, "Status: %s | Billing: %s\n\n", rec.Status, rec.BillingType)

	fmt.Fprintf(w, "Indicator: %s\n", coloredIndicator(f, view.Indicator))
	fmt.Fprintf(w, "Deadline: %s", view.Progress.DeadlineStatus)
	if view.Progress.DueDateStr != "" {
		fmt.Fprintf(w, " (due %s)", view.Progress.DueDateStr)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Completion: %.1f%%\n", view.Progress.CompletionPct)
	fmt.Fprintf(w, "Effort: %.1f / %.1f hours (%.1f%% consumed)\n\n",
		view.Effort.WorkedHours, view.Effort.EstimatedHours, view.Effort.ConsumptionPct)

	if view.Payload.Empty() {
		fmt.Fprintln(w, "No annotations recorded for this project.")
		return nil
	}

	if len(view.Payload.Milestones) > 0 {
		fmt.Fprintln(w, "Milestones:")
		for _, m := range view.Payload.Milestones {
			mark := " "
			if m.Done {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %s", mark, m.Title)
			if !m.DueDate.IsZero() {
				line += " (" + m.DueDate.Format("02/01/2006") + ")"
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	if len(view.Payload.Risks) > 0 {
		fmt.Fprintln(w, "Risks:")
		for _, r := range view.Payload.Risks {
			fmt.Fprintf(w, "  [%s] %s\n", r.Severity, r.Description)
			if r.Mitigation != "" {
				fmt.Fprintf(w, "      mitigation: %s\n", r.Mitigation)
			}
		}
		fmt.Fprintln(w)
	}

	if len(view.Payload.Notes) > 0 {
		fmt.Fprintln(w, "Notes:")
		for _, n := range view.Payload.Notes {
			fmt.Fprintf(w, "  - %s\n", n.Text)
		}
		fmt.Fprintln(w)
	}

	if len(view.Payload.NextSteps) > 0 {
		fmt.Fprintln(w, "Next steps:")
		for _, s := range view.Payload.NextSteps {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

func coloredIndicator(f *output.Formatter, ind annotations.Indicator) string {
	if !f.Colored() {
		return string(ind)
	}
	switch ind {
	case annotations.IndicatorRed:
		return color.RedString(string(ind))
	case annotations.IndicatorYellow:
		return color.YellowString(string(ind))
	case annotations.IndicatorGreen:
		return color.GreenString(string(ind))
	default:
		return string(ind)
	}
}
