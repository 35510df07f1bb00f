package companion

import (
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/superset"
)

// TestCompletedKeepsPlannedAndActual verifies the sync conversion carries
// both sides of every set.
func TestCompletedKeepsPlannedAndActual(t *testing.T) {
	at := time.Date(2026, 4, 1, 18, 40, 0, 0, time.UTC)
	ex := ActiveExercise{
		Name:          "Squat",
		MuscleGroups:  []string{"quads", "glutes"},
		OrderIndex:    3,
		SupersetGroup: "g",
		Sets: []ActiveSet{
			{SetNumber: 1, PlannedReps: 5, PlannedWeight: 100, ActualReps: 5, ActualWeight: 105, IsCompleted: true, CompletedAt: &at},
			{SetNumber: 2, PlannedReps: 5, PlannedWeight: 100, ActualReps: 5, ActualWeight: 100},
		},
	}

	got := ex.Completed()
	if got.Name != "Squat" || got.OrderIndex != 3 || got.SupersetGroup != "g" || len(got.MuscleGroups) != 2 {
		t.Errorf("exercise = %+v", got)
	}
	want := models.CompletedSet{SetNumber: 1, PlannedReps: 5, PlannedWeight: 100, ActualReps: 5, ActualWeight: 105, IsCompleted: true, CompletedAt: &at}
	if got.Sets[0] != want {
		t.Errorf("set 1 = %+v, want %+v", got.Sets[0], want)
	}
	if got.Sets[1].IsCompleted || got.Sets[1].CompletedAt != nil {
		t.Errorf("set 2 = %+v, want incomplete", got.Sets[1])
	}
	if !ex.Sets[0].WasModified() || ex.Sets[1].WasModified() {
		t.Error("WasModified should only flag set 1")
	}
}

// TestActiveExerciseSupersetLabels verifies active exercises feed the label
// assigner.
func TestActiveExerciseSupersetLabels(t *testing.T) {
	exercises := snapshot(testRoutine())
	labels := superset.Labels(exercises)
	if len(labels) != 1 || labels["s1"] != "A" {
		t.Errorf("labels = %v, want {s1: A}", labels)
	}
}
