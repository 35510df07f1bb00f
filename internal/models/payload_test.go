package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func samplePayload() CompletedWorkoutPayload {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	done := start.Add(5 * time.Minute)
	return CompletedWorkoutPayload{
		ID:          uuid.New(),
		RoutineName: "Push A",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Exercises: []CompletedExercise{
			{
				Name:       "Bench Press",
				OrderIndex: 0,
				Sets: []CompletedSet{
					{SetNumber: 1, PlannedReps: 8, PlannedWeight: 80, ActualReps: 8, ActualWeight: 80, IsCompleted: true, CompletedAt: &done},
					{SetNumber: 2, PlannedReps: 8, PlannedWeight: 80, ActualReps: 6, ActualWeight: 85, IsCompleted: true, CompletedAt: &done},
					{SetNumber: 3, PlannedReps: 8, PlannedWeight: 80, ActualReps: 8, ActualWeight: 80},
				},
			},
		},
	}
}

// TestToSession verifies that the sync payload becomes a completed session
// carrying actual values and completion flags.
func TestToSession(t *testing.T) {
	p := samplePayload()
	s := p.ToSession()

	if s.ID != p.ID {
		t.Errorf("ID = %v, want %v", s.ID, p.ID)
	}
	if !s.IsCompleted() {
		t.Fatal("session should be completed")
	}
	if !s.EndTime.Equal(p.EndTime) {
		t.Errorf("EndTime = %v, want %v", s.EndTime, p.EndTime)
	}
	if len(s.Exercises) != 1 || len(s.Exercises[0].Sets) != 3 {
		t.Fatalf("unexpected shape: %+v", s.Exercises)
	}
	set2 := s.Exercises[0].Sets[1]
	if set2.Reps != 6 || set2.Weight != 85 || !set2.IsCompleted {
		t.Errorf("set 2 = %+v, want actual 6 x 85 completed", set2)
	}
	if s.Exercises[0].Sets[2].IsCompleted {
		t.Error("set 3 should not be completed")
	}
}

// TestToSessionAssignsID verifies that a payload without an ID still yields
// an identifiable session.
func TestToSessionAssignsID(t *testing.T) {
	p := samplePayload()
	p.ID = uuid.Nil
	if s := p.ToSession(); s.ID == uuid.Nil {
		t.Error("expected generated session ID")
	}
}
