// Package config loads farol configuration with koanf.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for farol.
type Config struct {
	// Snapshot archive location and decoding
	Data DataConfig `koanf:"data" toml:"data"`

	// Squad capacity arithmetic
	Capacity CapacityConfig `koanf:"capacity" toml:"capacity"`

	// Fiscal quarter window for delivery performance
	Fiscal FiscalConfig `koanf:"fiscal" toml:"fiscal"`

	// Incremental-hours outlier sets, keyed by month
	Outliers []OutlierConfig `koanf:"outliers" toml:"outliers"`

	// Validated per-month figures overriding computed period KPIs
	Validated ValidatedConfig `koanf:"validated" toml:"validated"`

	// Annotation store (user artifacts: backlogs, milestones, risks)
	Annotations AnnotationsConfig `koanf:"annotations" toml:"annotations"`

	// Snapshot cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// DataConfig locates and decodes the monthly CSV snapshots.
type DataConfig struct {
	Dir       string   `koanf:"dir" toml:"dir"`
	Encodings []string `koanf:"encodings" toml:"encodings"` // tried in order
}

// CapacityConfig defines squad capacity constants.
type CapacityConfig struct {
	HoursPerPerson   float64 `koanf:"hours_per_person" toml:"hours_per_person"`
	PeoplePerSquad   int     `koanf:"people_per_squad" toml:"people_per_squad"`
	PlanningPMOHours float64 `koanf:"planning_pmo_hours" toml:"planning_pmo_hours"`

	// Fraction of the original estimate booked for over-budget projects
	OverBudgetFactor float64 `koanf:"over_budget_factor" toml:"over_budget_factor"`
}

// SquadCapacity returns the monthly capacity of a regular squad.
func (c CapacityConfig) SquadCapacity() float64 {
	return c.HoursPerPerson * float64(c.PeoplePerSquad)
}

// FiscalConfig bounds the delivery-performance window ("YYYY-MM-DD").
type FiscalConfig struct {
	QuarterStart string `koanf:"quarter_start" toml:"quarter_start"`
	QuarterEnd   string `koanf:"quarter_end" toml:"quarter_end"`
}

// OutlierConfig forces incremental hours to zero for the listed project
// numbers in the given month (retroactive adjustments in the source data).
type OutlierConfig struct {
	Month    string `koanf:"month" toml:"month"` // "YYYY-MM"
	Projects []int  `koanf:"projects" toml:"projects"`
}

// ValidatedConfig is the reconciliation layer: figures confirmed against
// independently validated monthly reports. When enabled, these replace the
// computed per-month values in period reports; computed values remain
// available alongside.
type ValidatedConfig struct {
	Enabled bool                      `koanf:"enabled" toml:"enabled"`
	Months  map[string]ValidatedMonth `koanf:"months" toml:"months"` // keyed by pt-BR month abbrev
}

// ValidatedMonth carries the externally validated figures for one month.
type ValidatedMonth struct {
	Closed          int     `koanf:"closed" toml:"closed"`
	New             int     `koanf:"new" toml:"new"`
	OnTime          int     `koanf:"on_time" toml:"on_time"`
	OffTime         int     `koanf:"off_time" toml:"off_time"`
	AvgLifetimeDays float64 `koanf:"avg_lifetime_days" toml:"avg_lifetime_days"`
}

// AnnotationsConfig points at the artifact database.
type AnnotationsConfig struct {
	Path string `koanf:"path" toml:"path"` // sqlite file; empty disables the join
}

// CacheConfig controls the parsed-snapshot cache.
type CacheConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       "data",
			Encodings: []string{"cp1252", "latin1", "utf-8"},
		},
		Capacity: CapacityConfig{
			HoursPerPerson:   180,
			PeoplePerSquad:   3,
			PlanningPMOHours: 180,
			OverBudgetFactor: 0.10,
		},
		Fiscal: FiscalConfig{
			QuarterStart: "2025-04-01",
			QuarterEnd:   "2025-06-30",
		},
		Outliers: []OutlierConfig{
			{Month: "2025-04", Projects: []int{6889, 5481, 4956, 6574}},
		},
		Validated: ValidatedConfig{
			Enabled: true,
			Months: map[string]ValidatedMonth{
				"jan": {Closed: 13, New: 17, OnTime: 9, OffTime: 4, AvgLifetimeDays: 108.0},
				"fev": {Closed: 11, New: 14, OnTime: 8, OffTime: 3, AvgLifetimeDays: 121.5},
				"mar": {Closed: 16, New: 19, OnTime: 10, OffTime: 6, AvgLifetimeDays: 98.7},
				"abr": {Closed: 14, New: 12, OnTime: 9, OffTime: 5, AvgLifetimeDays: 115.2},
				"mai": {Closed: 12, New: 15, OnTime: 8, OffTime: 4, AvgLifetimeDays: 104.9},
				"jun": {Closed: 15, New: 13, OnTime: 11, OffTime: 4, AvgLifetimeDays: 110.3},
			},
		},
		Annotations: AnnotationsConfig{
			Path: "",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"farol.toml",
		"farol.yaml",
		"farol.yml",
		"farol.json",
		".farol.toml",
		".farol.yaml",
		".farol.yml",
		".farol.json",
	}

	searchDirs := []string{".", ".farol"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// OutlierSet returns the project numbers whose incremental hours are
// zeroed for the given month ("YYYY-MM"), or nil.
func (c *Config) OutlierSet(month string) map[int]bool {
	for _, o := range c.Outliers {
		if o.Month == month {
			set := make(map[int]bool, len(o.Projects))
			for _, n := range o.Projects {
				set[n] = true
			}
			return set
		}
	}
	return nil
}
