package main

import (
	"fmt"
	"os"
	"time"

	"github.com/farolhq/farol/internal/cache"
	"github.com/farolhq/farol/internal/output"
	"github.com/farolhq/farol/pkg/annotations"
	"github.com/farolhq/farol/pkg/annotations/sqlitestore"
	"github.com/farolhq/farol/pkg/archive"
	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/loader"
	"github.com/farolhq/farol/pkg/report"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "farol",
		Usage:   "Consulting project dashboard and KPI engine",
		Version: version,
		Description: `Farol ingests monthly CSV snapshots of the ticketing system and
computes the operational KPI catalogue: active and critical projects,
billing-due lists, squad occupancy, burn rates, delivery performance,
and historical period reports with incremental-hours reconciliation.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"FAROL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Snapshot archive directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "today",
				Usage: "Reference date (YYYY-MM-DD) for month windows and deadlines",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the snapshot cache",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (includes pipeline warnings)",
			},
		},
		Commands: []*cli.Command{
			reportCmd(),
			criticalCmd(),
			billingCmd(),
			occupancyCmd(),
			burnrateCmd(),
			deliveryCmd(),
			lifetimeCmd(),
			periodCmd(),
			statusReportCmd(),
			initCmd(),
		},
	}
}

// loadConfig resolves configuration from --config or standard locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// todayFrom resolves the injectable reference date.
func todayFrom(c *cli.Context) (time.Time, error) {
	if s := c.String("today"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --today %q (want YYYY-MM-DD): %w", s, err)
		}
		return t, nil
	}
	return time.Now(), nil
}

// newSource wires the archive, loader, and cache into a snapshot source.
func newSource(c *cli.Context, cfg *config.Config, today time.Time) *report.Source {
	dataDir := cfg.Data.Dir
	if d := c.String("data"); d != "" {
		dataDir = d
	}

	dir := archive.New(dataDir, archive.WithToday(today))
	l := loader.New(loader.WithEncodings(cfg.Data.Encodings))
	snapCache := cache.New(cfg.Cache.Enabled && !c.Bool("no-cache"))
	return report.NewSource(dir, l, snapCache)
}

// newFormatter builds the output formatter from CLI flags.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}

// openStore opens the annotation store when configured; the returned
// closer is always safe to call.
func openStore(cfg *config.Config) (annotations.Store, func()) {
	if cfg.Annotations.Path == "" {
		return annotations.NopStore{}, func() {}
	}
	store, err := sqlitestore.Open(cfg.Annotations.Path)
	if err != nil {
		color.Yellow("Warning: annotation store unavailable (%v); continuing without annotations", err)
		return annotations.NopStore{}, func() {}
	}
	return store, func() { store.Close() }
}

// printWarnings surfaces pipeline warnings in verbose mode.
func printWarnings(c *cli.Context, warnings []string) {
	if !c.Bool("verbose") || len(warnings) == 0 {
		return
	}
	color.Yellow("%d warning(s) during snapshot processing:", len(warnings))
	for _, w := range warnings {
		color.Yellow("  - %s", w)
	}
}
