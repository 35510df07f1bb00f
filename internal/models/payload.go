package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionMetrics is what the sensor source reports when a session is finalized.
type SessionMetrics struct {
	Duration       time.Duration `json:"duration"`
	ActiveCalories float64       `json:"active_calories"`
	AvgHeartRate   float64       `json:"avg_heart_rate"`
	MaxHeartRate   float64       `json:"max_heart_rate"`
}

// CompletedWorkoutPayload is sent by the companion device when a workout ends.
type CompletedWorkoutPayload struct {
	ID                  uuid.UUID           `json:"id"`
	RoutineID           *uuid.UUID          `json:"routine_id,omitempty"`
	RoutineName         string              `json:"routine_name"`
	StartTime           time.Time           `json:"start_time"`
	EndTime             time.Time           `json:"end_time"`
	Metrics             SessionMetrics      `json:"metrics"`
	Exercises           []CompletedExercise `json:"exercises"`
	ShouldUpdateRoutine bool                `json:"should_update_routine"`
}

// CompletedExercise is the sync form of an exercise executed on the companion device.
type CompletedExercise struct {
	Name          string         `json:"name"`
	MuscleGroups  []string       `json:"muscle_groups,omitempty"`
	OrderIndex    int            `json:"order_index"`
	SupersetGroup string         `json:"superset_group,omitempty"`
	Sets          []CompletedSet `json:"sets"`
}

// CompletedSet carries both the planned and the actual values of a set.
type CompletedSet struct {
	SetNumber     int        `json:"set_number"`
	PlannedReps   int        `json:"planned_reps"`
	PlannedWeight float64    `json:"planned_weight"`
	ActualReps    int        `json:"actual_reps"`
	ActualWeight  float64    `json:"actual_weight"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ToSession converts the payload into the persisted session graph. Stored
// sets carry the actual values.
func (p CompletedWorkoutPayload) ToSession() WorkoutSession {
	end := p.EndTime
	s := WorkoutSession{
		ID:          p.ID,
		StartTime:   p.StartTime,
		EndTime:     &end,
		RoutineName: p.RoutineName,
		Exercises:   make([]WorkoutExercise, 0, len(p.Exercises)),
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for _, ce := range p.Exercises {
		ex := WorkoutExercise{
			ID:            uuid.New(),
			Name:          ce.Name,
			MuscleGroups:  ce.MuscleGroups,
			OrderIndex:    ce.OrderIndex,
			SupersetGroup: ce.SupersetGroup,
			Sets:          make([]WorkoutSet, 0, len(ce.Sets)),
		}
		for _, cs := range ce.Sets {
			ex.Sets = append(ex.Sets, WorkoutSet{
				ID:          uuid.New(),
				SetNumber:   cs.SetNumber,
				Reps:        cs.ActualReps,
				Weight:      cs.ActualWeight,
				IsCompleted: cs.IsCompleted,
				CompletedAt: cs.CompletedAt,
			})
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s
}
