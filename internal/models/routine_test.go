package models

import "testing"

// TestApplyActuals verifies that completed sets overwrite the routine's planned
// values while skipped sets leave the template untouched.
func TestApplyActuals(t *testing.T) {
	r := Routine{
		Name: "Push A",
		Exercises: []RoutineExercise{
			{
				Name:       "bench press",
				OrderIndex: 0,
				Sets: []RoutineSet{
					{SetNumber: 1, Reps: 8, Weight: 80, RestSeconds: 90},
					{SetNumber: 2, Reps: 8, Weight: 80, RestSeconds: 90},
					{SetNumber: 3, Reps: 8, Weight: 80, RestSeconds: 90},
				},
			},
		},
	}

	changed := r.ApplyActuals(samplePayload())
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}

	sets := r.Exercises[0].Sets
	if sets[0].Reps != 8 || sets[0].Weight != 80 {
		t.Errorf("set 1 = %+v, want unchanged 8 x 80", sets[0])
	}
	if sets[1].Reps != 6 || sets[1].Weight != 85 {
		t.Errorf("set 2 = %+v, want 6 x 85", sets[1])
	}
	if sets[2].Reps != 8 || sets[2].Weight != 80 {
		t.Errorf("set 3 = %+v, want unchanged 8 x 80", sets[2])
	}
	if sets[1].RestSeconds != 90 {
		t.Errorf("rest seconds = %d, want 90", sets[1].RestSeconds)
	}
}

// TestApplyActualsUnknownExercise verifies that exercises missing from the
// routine are ignored.
func TestApplyActualsUnknownExercise(t *testing.T) {
	r := Routine{Exercises: []RoutineExercise{{Name: "Squat", OrderIndex: 0}}}
	if changed := r.ApplyActuals(samplePayload()); changed != 0 {
		t.Errorf("changed = %d, want 0", changed)
	}
}
