package companion

import (
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// ActiveSet is a set being executed. Planned values come from the routine;
// actual values start equal to them and are edited during the workout.
type ActiveSet struct {
	ID            uuid.UUID
	SetNumber     int
	PlannedReps   int
	PlannedWeight float64
	ActualReps    int
	ActualWeight  float64
	RestSeconds   int
	IsCompleted   bool
	CompletedAt   *time.Time
}

// WasModified reports whether the actual values differ from the plan.
func (s ActiveSet) WasModified() bool {
	return s.ActualReps != s.PlannedReps || s.ActualWeight != s.PlannedWeight
}

// ActiveExercise is an exercise being executed.
type ActiveExercise struct {
	ID            uuid.UUID
	Name          string
	MuscleGroups  []string
	OrderIndex    int
	SupersetGroup string
	Sets          []ActiveSet
}

func (e ActiveExercise) SupersetGroupID() string { return e.SupersetGroup }
func (e ActiveExercise) Position() int           { return e.OrderIndex }

// IsComplete reports whether every set has been completed.
func (e ActiveExercise) IsComplete() bool {
	for _, s := range e.Sets {
		if !s.IsCompleted {
			return false
		}
	}
	return len(e.Sets) > 0
}

// Completed converts the exercise to its sync form, keeping planned and
// actual values side by side.
func (e ActiveExercise) Completed() models.CompletedExercise {
	out := models.CompletedExercise{
		Name:          e.Name,
		MuscleGroups:  e.MuscleGroups,
		OrderIndex:    e.OrderIndex,
		SupersetGroup: e.SupersetGroup,
		Sets:          make([]models.CompletedSet, 0, len(e.Sets)),
	}
	for _, s := range e.Sets {
		out.Sets = append(out.Sets, models.CompletedSet{
			SetNumber:     s.SetNumber,
			PlannedReps:   s.PlannedReps,
			PlannedWeight: s.PlannedWeight,
			ActualReps:    s.ActualReps,
			ActualWeight:  s.ActualWeight,
			IsCompleted:   s.IsCompleted,
			CompletedAt:   s.CompletedAt,
		})
	}
	return out
}

func (e ActiveExercise) firstIncompleteSet() int {
	for i, s := range e.Sets {
		if !s.IsCompleted {
			return i
		}
	}
	return 0
}

func (e ActiveExercise) clone() ActiveExercise {
	e.MuscleGroups = append([]string(nil), e.MuscleGroups...)
	sets := make([]ActiveSet, len(e.Sets))
	for i, s := range e.Sets {
		if s.CompletedAt != nil {
			at := *s.CompletedAt
			s.CompletedAt = &at
		}
		sets[i] = s
	}
	e.Sets = sets
	return e
}

// snapshot copies the routine into fresh active exercises ordered by order
// index, with sets ordered by set number.
func snapshot(r models.Routine) []ActiveExercise {
	routineExercises := make([]models.RoutineExercise, len(r.Exercises))
	copy(routineExercises, r.Exercises)
	sort.SliceStable(routineExercises, func(i, j int) bool {
		return routineExercises[i].OrderIndex < routineExercises[j].OrderIndex
	})

	out := make([]ActiveExercise, 0, len(routineExercises))
	for _, re := range routineExercises {
		ex := ActiveExercise{
			ID:            uuid.New(),
			Name:          re.Name,
			MuscleGroups:  append([]string(nil), re.MuscleGroups...),
			OrderIndex:    re.OrderIndex,
			SupersetGroup: re.SupersetGroup,
			Sets:          make([]ActiveSet, 0, len(re.Sets)),
		}
		for _, rs := range re.Sets {
			ex.Sets = append(ex.Sets, ActiveSet{
				ID:            uuid.New(),
				SetNumber:     rs.SetNumber,
				PlannedReps:   rs.Reps,
				PlannedWeight: rs.Weight,
				ActualReps:    rs.Reps,
				ActualWeight:  rs.Weight,
				RestSeconds:   rs.RestSeconds,
			})
		}
		sort.SliceStable(ex.Sets, func(i, j int) bool { return ex.Sets[i].SetNumber < ex.Sets[j].SetNumber })
		out = append(out, ex)
	}
	return out
}

// shouldUpdateRoutine reports whether any completed set deviated from plan.
func shouldUpdateRoutine(exercises []ActiveExercise) bool {
	for _, ex := range exercises {
		for _, s := range ex.Sets {
			if s.IsCompleted && s.WasModified() {
				return true
			}
		}
	}
	return false
}
