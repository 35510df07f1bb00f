package progress

import (
	"math"
	"reflect"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

// TestProgressDataSinglePoint checks the metrics of a single session.
func TestProgressDataSinglePoint(t *testing.T) {
	store := &fakeStore{sessions: []models.WorkoutSession{
		completedSession(daysAgo(3), exercise("Bench Press", 0,
			set(1, 5, 100, true),
			set(2, 5, 100, true),
			set(3, 3, 110, false),
		)),
	}}
	svc := newTestService(store)

	data := svc.ProgressData(t.Context(), "Bench Press", TimeframeMonth)
	if len(data.DataPoints) != 1 {
		t.Fatalf("got %d points, want 1", len(data.DataPoints))
	}
	p := data.DataPoints[0]
	if p.MaxWeight != 100 {
		t.Errorf("MaxWeight = %v, want 100", p.MaxWeight)
	}
	if math.Abs(p.EstimatedOneRepMax-116.667) > 0.001 {
		t.Errorf("EstimatedOneRepMax = %.3f, want 116.667", p.EstimatedOneRepMax)
	}
	if p.TotalVolume != 1000 || p.TotalSets != 2 || p.TotalReps != 10 {
		t.Errorf("volume/sets/reps = %v/%d/%d, want 1000/2/10", p.TotalVolume, p.TotalSets, p.TotalReps)
	}
	if p.SessionID != store.sessions[0].ID {
		t.Errorf("SessionID = %v, want %v", p.SessionID, store.sessions[0].ID)
	}
}

// TestProgressDataFiltersAndOrders verifies incomplete sessions, empty
// exercises and out-of-window sessions are dropped and the series ascends.
func TestProgressDataFiltersAndOrders(t *testing.T) {
	inProgress := completedSession(daysAgo(1), exercise("Squat", 0, set(1, 5, 200, true)))
	inProgress.EndTime = nil

	store := &fakeStore{sessions: []models.WorkoutSession{
		completedSession(daysAgo(2), exercise("squat", 0, set(1, 5, 140, true))),
		completedSession(daysAgo(20), exercise("Squat", 0, set(1, 5, 120, true))),
		inProgress,
		completedSession(daysAgo(10), exercise("SQUAT", 0, set(1, 5, 130, false))),
		completedSession(daysAgo(90), exercise("Squat", 0, set(1, 5, 100, true))),
		completedSession(daysAgo(5), exercise("Deadlift", 0, set(1, 5, 180, true))),
	}}
	svc := newTestService(store)

	data := svc.ProgressData(t.Context(), "Squat", TimeframeMonth)
	var weights []float64
	for _, p := range data.DataPoints {
		weights = append(weights, p.MaxWeight)
	}
	if want := []float64{120, 140}; !reflect.DeepEqual(weights, want) {
		t.Fatalf("weights = %v, want %v", weights, want)
	}
	for i := 1; i < len(data.DataPoints); i++ {
		if data.DataPoints[i].Date.Before(data.DataPoints[i-1].Date) {
			t.Error("data points not ascending by date")
		}
	}

	change, ok := data.MaxWeightChange()
	if !ok || change != 20 {
		t.Errorf("MaxWeightChange = %v, %v; want 20, true", change, ok)
	}
	if _, ok := data.OneRepMaxChange(); !ok {
		t.Error("OneRepMaxChange should be defined for two points")
	}
	best, ok := data.PersonalBest()
	if !ok || best.MaxWeight != 140 {
		t.Errorf("PersonalBest = %+v, want the 140kg point", best)
	}

	all := svc.ProgressData(t.Context(), "Squat", TimeframeAllTime)
	if len(all.DataPoints) != 3 {
		t.Errorf("all-time points = %d, want 3", len(all.DataPoints))
	}
}

// TestProgressDataStoreError verifies a failing store yields an empty series.
func TestProgressDataStoreError(t *testing.T) {
	svc := newTestService(&fakeStore{err: errStoreDown})

	data := svc.ProgressData(t.Context(), "Bench Press", TimeframeYear)
	if data.ExerciseName != "Bench Press" {
		t.Errorf("ExerciseName = %q", data.ExerciseName)
	}
	if data.DataPoints == nil || len(data.DataPoints) != 0 {
		t.Errorf("DataPoints = %v, want empty non-nil slice", data.DataPoints)
	}
	if _, ok := data.MaxWeightChange(); ok {
		t.Error("MaxWeightChange should be undefined for an empty series")
	}
	if _, ok := data.PersonalBest(); ok {
		t.Error("PersonalBest should be undefined for an empty series")
	}
}

// TestProgressDataSingleChangeUndefined verifies changes need two points.
func TestProgressDataSingleChangeUndefined(t *testing.T) {
	store := &fakeStore{sessions: []models.WorkoutSession{
		completedSession(daysAgo(1), exercise("Row", 0, set(1, 10, 60, true))),
	}}
	data := newTestService(store).ProgressData(t.Context(), "Row", TimeframeWeek)
	if _, ok := data.MaxWeightChange(); ok {
		t.Error("MaxWeightChange should be undefined for one point")
	}
	if _, ok := data.OneRepMaxChange(); ok {
		t.Error("OneRepMaxChange should be undefined for one point")
	}
}

// TestPersonalBestTieKeepsEarliest verifies ties resolve to the oldest point.
func TestPersonalBestTieKeepsEarliest(t *testing.T) {
	store := &fakeStore{sessions: []models.WorkoutSession{
		completedSession(daysAgo(10), exercise("Press", 0, set(1, 5, 50, true))),
		completedSession(daysAgo(5), exercise("Press", 0, set(1, 5, 50, true))),
	}}
	data := newTestService(store).ProgressData(t.Context(), "Press", TimeframeMonth)
	best, ok := data.PersonalBest()
	if !ok {
		t.Fatal("expected a personal best")
	}
	if !best.Date.Equal(daysAgo(10)) {
		t.Errorf("PersonalBest date = %v, want %v", best.Date, daysAgo(10))
	}
}

// TestExerciseNames verifies case-insensitive dedup and sorting.
func TestExerciseNames(t *testing.T) {
	store := &fakeStore{sessions: []models.WorkoutSession{
		completedSession(daysAgo(3), exercise("squat", 0), exercise("Bench Press", 1)),
		completedSession(daysAgo(2), exercise("Squat", 0), exercise("deadlift", 1)),
		completedSession(daysAgo(400), exercise("Curl", 0)),
	}}
	svc := newTestService(store)

	got := svc.ExerciseNames(t.Context(), TimeframeMonth)
	want := []string{"Bench Press", "deadlift", "squat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExerciseNames = %v, want %v", got, want)
	}

	if names := newTestService(&fakeStore{err: errStoreDown}).ExerciseNames(t.Context(), TimeframeAllTime); len(names) != 0 {
		t.Errorf("ExerciseNames on failing store = %v, want empty", names)
	}
}

// TestWindowQuery verifies the query sent to the store.
func TestWindowQuery(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	svc.ProgressData(t.Context(), "x", TimeframeWeek)
	svc.ProgressData(t.Context(), "x", TimeframeAllTime)

	if len(store.queries) != 2 {
		t.Fatalf("got %d queries, want 2", len(store.queries))
	}
	week := store.queries[0]
	if week.StartedFrom == nil || !week.StartedFrom.Equal(daysAgo(7)) {
		t.Errorf("week StartedFrom = %v, want %v", week.StartedFrom, daysAgo(7))
	}
	if !week.CompletedOnly || week.Order != models.Ascending {
		t.Errorf("week query = %+v, want completed-only ascending", week)
	}
	if store.queries[1].StartedFrom != nil {
		t.Errorf("all-time StartedFrom = %v, want nil", store.queries[1].StartedFrom)
	}
}
