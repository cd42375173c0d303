package history

import (
	"testing"
	"time"

	"github.com/farolhq/farol/pkg/models"
)

func snap(month time.Month, hours map[int]float64) *models.Snapshot {
	s := &models.Snapshot{Tag: models.MonthTag{Year: 2025, Month: month}}
	for number, h := range hours {
		s.Records = append(s.Records, models.ProjectRecord{Number: number, WorkedHours: h})
	}
	return s
}

func TestIncrements(t *testing.T) {
	prior := snap(time.March, map[int]float64{1: 30, 2: 50})
	current := snap(time.April, map[int]float64{1: 50, 2: 45, 3: 12})

	inc := Increments(prior, current, nil)

	if inc[1] != 20 {
		t.Errorf("inc[1] = %v, want 20", inc[1])
	}
	if inc[2] != 0 {
		t.Errorf("inc[2] = %v, negative diffs clamp to zero", inc[2])
	}
	if inc[3] != 12 {
		t.Errorf("inc[3] = %v, new projects contribute their total", inc[3])
	}
}

func TestIncrementsNoBaseline(t *testing.T) {
	current := snap(time.January, map[int]float64{1: 30, 2: 15})

	inc := Increments(nil, current, nil)

	if inc[1] != 30 || inc[2] != 15 {
		t.Errorf("without a baseline each project contributes its total: %v", inc)
	}
	if TotalIncrement(inc) != 45 {
		t.Errorf("TotalIncrement = %v", TotalIncrement(inc))
	}
}

func TestIncrementsOutliers(t *testing.T) {
	prior := snap(time.March, map[int]float64{6889: 40})
	current := snap(time.April, map[int]float64{6889: 100, 7000: 10})

	inc := Increments(prior, current, map[int]bool{6889: true})

	if inc[6889] != 0 {
		t.Errorf("outlier increment = %v, want 0", inc[6889])
	}
	if inc[7000] != 10 {
		t.Errorf("non-outlier increment = %v", inc[7000])
	}

	// The following month diffs against April's actual hours again.
	may := snap(time.May, map[int]float64{6889: 120})
	inc = Increments(current, may, nil)
	if inc[6889] != 20 {
		t.Errorf("post-outlier increment = %v, want 20", inc[6889])
	}
}

// The telescoping law: summing increments over consecutive months equals
// the final total minus the baseline, as long as diffs never clamp.
func TestIncrementsTelescoping(t *testing.T) {
	months := []*models.Snapshot{
		snap(time.January, map[int]float64{1: 10}),
		snap(time.February, map[int]float64{1: 25}),
		snap(time.March, map[int]float64{1: 60}),
		snap(time.April, map[int]float64{1: 72}),
	}

	var sum float64
	for i := 1; i < len(months); i++ {
		sum += Increments(months[i-1], months[i], nil)[1]
	}

	want := 72.0 - 10.0
	if sum != want {
		t.Errorf("telescoped sum = %v, want %v", sum, want)
	}
}

// Clamped sequence from the dashboard's documented example: worked hours
// 30, 50, 45 emit increments 30, 20, 0 and sum to 50.
func TestIncrementsClampedSequence(t *testing.T) {
	m1 := snap(time.January, map[int]float64{10: 30})
	m2 := snap(time.February, map[int]float64{10: 50})
	m3 := snap(time.March, map[int]float64{10: 45})

	i1 := Increments(nil, m1, nil)[10]
	i2 := Increments(m1, m2, nil)[10]
	i3 := Increments(m2, m3, nil)[10]

	if i1 != 30 || i2 != 20 || i3 != 0 {
		t.Errorf("increments = %v, %v, %v, want 30, 20, 0", i1, i2, i3)
	}
	if i1+i2+i3 != 50 {
		t.Errorf("sum = %v, want 50", i1+i2+i3)
	}
}

func TestIncrementsNilCurrent(t *testing.T) {
	if got := Increments(snap(time.March, nil), nil, nil); got != nil {
		t.Errorf("nil current should yield nil, got %v", got)
	}
}
