package models

import (
	"strings"

	"github.com/google/uuid"
)

// Routine is a reusable workout template.
type Routine struct {
	ID        uuid.UUID         `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Exercises []RoutineExercise `json:"exercises" yaml:"exercises"`
}

// RoutineExercise is a planned exercise within a routine.
type RoutineExercise struct {
	Name          string       `json:"name" yaml:"name"`
	MuscleGroups  []string     `json:"muscle_groups,omitempty" yaml:"muscle_groups"`
	OrderIndex    int          `json:"order_index" yaml:"order_index"`
	SupersetGroup string       `json:"superset_group,omitempty" yaml:"superset_group"`
	Sets          []RoutineSet `json:"sets" yaml:"sets"`
}

// SupersetGroupID returns the superset group the exercise belongs to, or "".
func (e RoutineExercise) SupersetGroupID() string { return e.SupersetGroup }

// Position returns the exercise's ordinal position within the routine.
func (e RoutineExercise) Position() int { return e.OrderIndex }

// RoutineSet is a planned set.
type RoutineSet struct {
	SetNumber   int     `json:"set_number" yaml:"set_number"`
	Reps        int     `json:"reps" yaml:"reps"`
	Weight      float64 `json:"weight" yaml:"weight"`
	RestSeconds int     `json:"rest_seconds" yaml:"rest_seconds"`
}

// ApplyActuals copies the actual reps and weight of completed sets from a
// finished workout back into the routine's planned values. Exercises are
// matched by order index and case-insensitive name, sets by set number.
// Returns the number of sets changed.
func (r *Routine) ApplyActuals(p CompletedWorkoutPayload) int {
	changed := 0
	for _, done := range p.Exercises {
		ex := r.findExercise(done.OrderIndex, done.Name)
		if ex == nil {
			continue
		}
		for _, set := range done.Sets {
			if !set.IsCompleted {
				continue
			}
			for i := range ex.Sets {
				planned := &ex.Sets[i]
				if planned.SetNumber != set.SetNumber {
					continue
				}
				if planned.Reps != set.ActualReps || planned.Weight != set.ActualWeight {
					planned.Reps = set.ActualReps
					planned.Weight = set.ActualWeight
					changed++
				}
				break
			}
		}
	}
	return changed
}

func (r *Routine) findExercise(orderIndex int, name string) *RoutineExercise {
	for i := range r.Exercises {
		ex := &r.Exercises[i]
		if ex.OrderIndex == orderIndex && strings.EqualFold(ex.Name, name) {
			return ex
		}
	}
	return nil
}
