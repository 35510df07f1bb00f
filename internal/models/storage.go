package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is a persisted training session. A session is completed
// once EndTime is set.
type WorkoutSession struct {
	ID          uuid.UUID         `json:"id"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	RoutineName string            `json:"routine_name"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// IsCompleted reports whether the session has been finished.
func (s WorkoutSession) IsCompleted() bool {
	return s.EndTime != nil
}

// WorkoutExercise is one exercise performed within a session.
type WorkoutExercise struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	MuscleGroups  []string     `json:"muscle_groups,omitempty"`
	OrderIndex    int          `json:"order_index"`
	SupersetGroup string       `json:"superset_group,omitempty"`
	Sets          []WorkoutSet `json:"sets"`
}

// SupersetGroupID returns the superset group the exercise belongs to, or "".
func (e WorkoutExercise) SupersetGroupID() string { return e.SupersetGroup }

// Position returns the exercise's ordinal position within its session.
func (e WorkoutExercise) Position() int { return e.OrderIndex }

// WorkoutSet is a single set. Only completed sets count towards metrics.
type WorkoutSet struct {
	ID          uuid.UUID  `json:"id"`
	SetNumber   int        `json:"set_number"`
	Reps        int        `json:"reps"`
	Weight      float64    `json:"weight"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SortOrder orders sessions by start time.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// SessionQuery is the predicate and ordering used to fetch sessions from a store.
type SessionQuery struct {
	StartedFrom   *time.Time // start_time >= StartedFrom
	StartedBefore *time.Time // start_time < StartedBefore
	CompletedOnly bool       // end_time IS NOT NULL
	Order         SortOrder
	Limit         int // 0 means no limit
}
