package models

import (
	"fmt"
	"strings"
	"time"
)

// MonthTag identifies one monthly snapshot.
type MonthTag struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Portuguese month abbreviations used by the archive file naming
// convention (dadosr_apt_{mmm}.csv).
var monthAbbrev = [13]string{"", "jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// TagFor returns the MonthTag of the given date.
func TagFor(t time.Time) MonthTag {
	return MonthTag{Year: t.Year(), Month: t.Month()}
}

// ParseMonthTag parses "YYYY-MM" into a MonthTag.
func ParseMonthTag(s string) (MonthTag, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthTag{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthTag{Year: t.Year(), Month: t.Month()}, nil
}

// ParseMonthAbbrev resolves a lowercase Portuguese month abbreviation.
func ParseMonthAbbrev(abbrev string) (time.Month, bool) {
	needle := strings.ToLower(strings.TrimSpace(abbrev))
	for m := 1; m <= 12; m++ {
		if monthAbbrev[m] == needle {
			return time.Month(m), true
		}
	}
	return 0, false
}

// Abbrev returns the lowercase Portuguese abbreviation for the tag's month.
func (t MonthTag) Abbrev() string {
	if t.Month < time.January || t.Month > time.December {
		return ""
	}
	return monthAbbrev[t.Month]
}

// IsZero reports whether the tag is unset.
func (t MonthTag) IsZero() bool { return t.Year == 0 && t.Month == 0 }

// Before reports whether t precedes other.
func (t MonthTag) Before(other MonthTag) bool {
	if t.Year != other.Year {
		return t.Year < other.Year
	}
	return t.Month < other.Month
}

// Prev returns the preceding month.
func (t MonthTag) Prev() MonthTag {
	if t.Month == time.January {
		return MonthTag{Year: t.Year - 1, Month: time.December}
	}
	return MonthTag{Year: t.Year, Month: t.Month - 1}
}

// Next returns the following month.
func (t MonthTag) Next() MonthTag {
	if t.Month == time.December {
		return MonthTag{Year: t.Year + 1, Month: time.January}
	}
	return MonthTag{Year: t.Year, Month: t.Month + 1}
}

// Contains reports whether the date falls inside the tag's month.
func (t MonthTag) Contains(d time.Time) bool {
	return !d.IsZero() && d.Year() == t.Year && d.Month() == t.Month
}

// String renders the tag as "YYYY-MM".
func (t MonthTag) String() string {
	return fmt.Sprintf("%04d-%02d", t.Year, int(t.Month))
}

// Range returns the inclusive sequence of months from t through end.
// Returns nil if end precedes t.
func (t MonthTag) Range(end MonthTag) []MonthTag {
	if end.Before(t) {
		return nil
	}
	var out []MonthTag
	for cur := t; ; cur = cur.Next() {
		out = append(out, cur)
		if cur == end {
			break
		}
	}
	return out
}

// RawTable is the loader output: verbatim headers and all-text cells.
// Numeric and date coercion is deferred to the canonicalizer.
type RawTable struct {
	Tag         MonthTag   `json:"tag"`
	Encoding    string     `json:"encoding"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// Empty reports whether the table carries no data rows.
func (t *RawTable) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Column returns the index of the named header, or -1.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns row[col], tolerating short rows.
func (t *RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Snapshot is an immutable canonical monthly snapshot.
type Snapshot struct {
	Tag         MonthTag        `json:"tag"`
	Records     []ProjectRecord `json:"records"`
	Warnings    []string        `json:"warnings,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
}

// Empty reports whether the snapshot has no records.
func (s *Snapshot) Empty() bool { return s == nil || len(s.Records) == 0 }

// ByNumber builds a project-number index. Later duplicates win, matching
// the source system's export behavior (the last row is the fresh one).
func (s *Snapshot) ByNumber() map[int]*ProjectRecord {
	idx := make(map[int]*ProjectRecord, len(s.Records))
	for i := range s.Records {
		idx[s.Records[i].Number] = &s.Records[i]
	}
	return idx
}

// Active returns the records outside the closed status set.
func (s *Snapshot) Active() []ProjectRecord {
	out := make([]ProjectRecord, 0, len(s.Records))
	for _, r := range s.Records {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}
