package progress

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/claude/ironlog/internal/models"
)

// SetComparison pairs a current set with the previous session's set at the
// same position.
type SetComparison struct {
	SetNumber      int
	CurrentReps    int
	CurrentWeight  float64
	IsCompleted    bool
	PreviousReps   *int
	PreviousWeight *float64
}

// RepsDelta is current − previous reps. Undefined without a previous set.
func (c SetComparison) RepsDelta() (int, bool) {
	if c.PreviousReps == nil {
		return 0, false
	}
	return c.CurrentReps - *c.PreviousReps, true
}

// WeightDelta is current − previous weight. Undefined without a previous set.
func (c SetComparison) WeightDelta() (float64, bool) {
	if c.PreviousWeight == nil {
		return 0, false
	}
	return c.CurrentWeight - *c.PreviousWeight, true
}

type setComparisonJSON struct {
	SetNumber      int      `json:"set_number"`
	CurrentReps    int      `json:"current_reps"`
	CurrentWeight  float64  `json:"current_weight"`
	IsCompleted    bool     `json:"is_completed"`
	PreviousReps   *int     `json:"previous_reps"`
	PreviousWeight *float64 `json:"previous_weight"`
	RepsDelta      *int     `json:"reps_delta"`
	WeightDelta    *float64 `json:"weight_delta"`
}

// MarshalJSON includes the derived deltas, null when undefined.
func (c SetComparison) MarshalJSON() ([]byte, error) {
	out := setComparisonJSON{
		SetNumber:      c.SetNumber,
		CurrentReps:    c.CurrentReps,
		CurrentWeight:  c.CurrentWeight,
		IsCompleted:    c.IsCompleted,
		PreviousReps:   c.PreviousReps,
		PreviousWeight: c.PreviousWeight,
	}
	if d, ok := c.RepsDelta(); ok {
		out.RepsDelta = &d
	}
	if d, ok := c.WeightDelta(); ok {
		out.WeightDelta = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON. Derived fields are
// ignored.
func (c *SetComparison) UnmarshalJSON(data []byte) error {
	var in setComparisonJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = SetComparison{
		SetNumber:      in.SetNumber,
		CurrentReps:    in.CurrentReps,
		CurrentWeight:  in.CurrentWeight,
		IsCompleted:    in.IsCompleted,
		PreviousReps:   in.PreviousReps,
		PreviousWeight: in.PreviousWeight,
	}
	return nil
}

// ExerciseComparisonResult compares one exercise of a session with the last
// time it was performed.
type ExerciseComparisonResult struct {
	ExerciseName       string
	Sets               []SetComparison
	CurrentTotalVolume float64
	CurrentTotalReps   int
	CurrentTotalSets   int
	CurrentMaxWeight   float64
	Previous           *PreviousExercisePerformance
}

// IsFirstTime reports whether there is no earlier performance of the exercise.
func (r ExerciseComparisonResult) IsFirstTime() bool {
	return r.Previous == nil
}

// VolumeDelta is current − previous total volume. Undefined unless the
// previous volume is positive.
func (r ExerciseComparisonResult) VolumeDelta() (float64, bool) {
	prev := r.Previous.TotalVolume()
	if prev <= 0 {
		return 0, false
	}
	return r.CurrentTotalVolume - prev, true
}

// VolumePercentChange is the volume delta as a percentage of the previous
// volume. Undefined unless the previous volume is positive.
func (r ExerciseComparisonResult) VolumePercentChange() (float64, bool) {
	delta, ok := r.VolumeDelta()
	if !ok {
		return 0, false
	}
	return delta / r.Previous.TotalVolume() * 100, true
}

type comparisonJSON struct {
	ExerciseName        string                       `json:"exercise_name"`
	Sets                []SetComparison              `json:"sets"`
	CurrentTotalVolume  float64                      `json:"current_total_volume"`
	CurrentTotalReps    int                          `json:"current_total_reps"`
	CurrentTotalSets    int                          `json:"current_total_sets"`
	CurrentMaxWeight    float64                      `json:"current_max_weight"`
	Previous            *PreviousExercisePerformance `json:"previous"`
	IsFirstTime         bool                         `json:"is_first_time"`
	VolumeDelta         *float64                     `json:"volume_delta"`
	VolumePercentChange *float64                     `json:"volume_percent_change"`
}

// MarshalJSON includes the derived fields, null when undefined.
func (r ExerciseComparisonResult) MarshalJSON() ([]byte, error) {
	out := comparisonJSON{
		ExerciseName:       r.ExerciseName,
		Sets:               r.Sets,
		CurrentTotalVolume: r.CurrentTotalVolume,
		CurrentTotalReps:   r.CurrentTotalReps,
		CurrentTotalSets:   r.CurrentTotalSets,
		CurrentMaxWeight:   r.CurrentMaxWeight,
		Previous:           r.Previous,
		IsFirstTime:        r.IsFirstTime(),
	}
	if d, ok := r.VolumeDelta(); ok {
		out.VolumeDelta = &d
	}
	if p, ok := r.VolumePercentChange(); ok {
		out.VolumePercentChange = &p
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON. Derived fields are
// recomputed from Previous.
func (r *ExerciseComparisonResult) UnmarshalJSON(data []byte) error {
	var in comparisonJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = ExerciseComparisonResult{
		ExerciseName:       in.ExerciseName,
		Sets:               in.Sets,
		CurrentTotalVolume: in.CurrentTotalVolume,
		CurrentTotalReps:   in.CurrentTotalReps,
		CurrentTotalSets:   in.CurrentTotalSets,
		CurrentMaxWeight:   in.CurrentMaxWeight,
		Previous:           in.Previous,
	}
	return nil
}

// CompareWithPrevious compares every exercise of the session, in order-index
// order, against its most recent performance before the session started.
// Sets are aligned by position, not by content.
func (s *Service) CompareWithPrevious(ctx context.Context, session models.WorkoutSession) []ExerciseComparisonResult {
	exercises := make([]models.WorkoutExercise, len(session.Exercises))
	copy(exercises, session.Exercises)
	sort.SliceStable(exercises, func(i, j int) bool { return exercises[i].OrderIndex < exercises[j].OrderIndex })

	results := make([]ExerciseComparisonResult, 0, len(exercises))
	for _, ex := range exercises {
		prev := s.PreviousPerformance(ctx, ex.Name, session.StartTime)
		results = append(results, compareExercise(ex, prev))
	}
	return results
}

func compareExercise(ex models.WorkoutExercise, prev *PreviousExercisePerformance) ExerciseComparisonResult {
	current := sortedSets(ex.Sets)

	comparisons := make([]SetComparison, 0, len(current))
	for i, set := range current {
		c := SetComparison{
			SetNumber:     set.SetNumber,
			CurrentReps:   set.Reps,
			CurrentWeight: set.Weight,
			IsCompleted:   set.IsCompleted,
		}
		if prev != nil && i < len(prev.Sets) {
			reps := prev.Sets[i].Reps
			weight := prev.Sets[i].Weight
			c.PreviousReps = &reps
			c.PreviousWeight = &weight
		}
		comparisons = append(comparisons, c)
	}

	return ExerciseComparisonResult{
		ExerciseName:       ex.Name,
		Sets:               comparisons,
		CurrentTotalVolume: TotalVolume(current),
		CurrentTotalReps:   TotalReps(current),
		CurrentTotalSets:   TotalSets(current),
		CurrentMaxWeight:   MaxWeight(current),
		Previous:           prev,
	}
}
