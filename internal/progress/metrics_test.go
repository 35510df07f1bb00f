package progress

import (
	"math"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

// TestEpleyOneRepMax checks the formula against known values.
func TestEpleyOneRepMax(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{100, 5, 116.667},
		{100, 1, 103.333},
		{80, 10, 106.667},
		{60, 0, 60},
		{0, 12, 0},
	}
	for _, tt := range tests {
		got := EpleyOneRepMax(tt.weight, tt.reps)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("EpleyOneRepMax(%v, %d) = %.3f, want %.3f", tt.weight, tt.reps, got, tt.want)
		}
	}
}

// TestSetMetricsIgnoreIncompleteSets verifies only completed sets count.
func TestSetMetricsIgnoreIncompleteSets(t *testing.T) {
	sets := []models.WorkoutSet{
		set(1, 8, 80, true),
		set(2, 6, 90, true),
		set(3, 5, 120, false),
	}

	if got := MaxWeight(sets); got != 90 {
		t.Errorf("MaxWeight = %v, want 90", got)
	}
	if got := TotalVolume(sets); got != 8*80+6*90 {
		t.Errorf("TotalVolume = %v, want %v", got, 8*80+6*90)
	}
	if got := TotalReps(sets); got != 14 {
		t.Errorf("TotalReps = %d, want 14", got)
	}
	if got := TotalSets(sets); got != 2 {
		t.Errorf("TotalSets = %d, want 2", got)
	}
	want := EpleyOneRepMax(90, 6)
	if got := EstimatedOneRepMax(sets); math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimatedOneRepMax = %v, want %v", got, want)
	}
}

// TestEstimatedOneRepMaxSkipsBodyweight verifies zero-weight sets never
// produce an estimate.
func TestEstimatedOneRepMaxSkipsBodyweight(t *testing.T) {
	sets := []models.WorkoutSet{set(1, 15, 0, true), set(2, 12, 0, true)}
	if got := EstimatedOneRepMax(sets); got != 0 {
		t.Errorf("EstimatedOneRepMax = %v, want 0", got)
	}
	if got := TotalReps(sets); got != 27 {
		t.Errorf("TotalReps = %d, want 27", got)
	}
}

// TestMetricsEmpty verifies empty input yields zeros.
func TestMetricsEmpty(t *testing.T) {
	if MaxWeight(nil) != 0 || TotalVolume(nil) != 0 || TotalReps(nil) != 0 || TotalSets(nil) != 0 || EstimatedOneRepMax(nil) != 0 {
		t.Error("expected all metrics to be zero for no sets")
	}
}

// TestEstimatedOneRepMaxMonotonicInWeight verifies raising one completed
// set's weight at fixed reps never lowers the estimate, whether or not that
// set is the best one.
func TestEstimatedOneRepMaxMonotonicInWeight(t *testing.T) {
	tests := []struct {
		name  string
		sets  []models.WorkoutSet
		index int
	}{
		{"single set", []models.WorkoutSet{set(1, 5, 100, true)}, 0},
		{"best set", []models.WorkoutSet{set(1, 5, 100, true), set(2, 8, 70, true)}, 0},
		{"not the best set", []models.WorkoutSet{set(1, 5, 100, true), set(2, 8, 50, true)}, 1},
		{"overtakes the best", []models.WorkoutSet{set(1, 3, 100, true), set(2, 10, 60, true)}, 1},
		{"from bodyweight", []models.WorkoutSet{set(1, 12, 0, true), set(2, 5, 40, true)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets := append([]models.WorkoutSet(nil), tt.sets...)
			prev := EstimatedOneRepMax(sets)
			for step := 1; step <= 40; step++ {
				sets[tt.index].Weight += 2.5
				got := EstimatedOneRepMax(sets)
				if got < prev {
					t.Fatalf("weight %.1f: estimate dropped %.3f -> %.3f", sets[tt.index].Weight, prev, got)
				}
				prev = got
			}
		})
	}
}
