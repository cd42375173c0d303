package history

import (
	"github.com/farolhq/farol/pkg/models"
)

// Increments computes per-project incremental hours between two
// consecutive monthly snapshots.
//
// A project present in both months contributes the non-negative
// difference of its worked hours; negative diffs are data-correction
// artifacts and clamp to zero. A project new to the current month
// contributes its full total. Projects in the outlier set are forced to
// zero (retroactive adjustments that would otherwise inflate the month).
//
// prior may be nil (first month with no resolvable baseline); every
// project then contributes its total.
func Increments(prior, current *models.Snapshot, outliers map[int]bool) map[int]float64 {
	if current == nil {
		return nil
	}

	var prevHours map[int]*models.ProjectRecord
	if prior != nil {
		prevHours = prior.ByNumber()
	}

	out := make(map[int]float64, len(current.Records))
	for i := range current.Records {
		r := &current.Records[i]

		if outliers[r.Number] {
			out[r.Number] = 0
			continue
		}

		inc := r.WorkedHours
		if prev, ok := prevHours[r.Number]; ok {
			inc = r.WorkedHours - prev.WorkedHours
			if inc < 0 {
				inc = 0
			}
		}
		out[r.Number] = inc
	}
	return out
}

// TotalIncrement sums an increment map.
func TotalIncrement(inc map[int]float64) float64 {
	var sum float64
	for _, v := range inc {
		sum += v
	}
	return sum
}
