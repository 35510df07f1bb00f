package progress

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// PreviousSetPerformance is one set of an earlier session.
type PreviousSetPerformance struct {
	Reps        int     `json:"reps"`
	Weight      float64 `json:"weight"`
	IsCompleted bool    `json:"is_completed"`
}

// PreviousExercisePerformance is how an exercise went the last time it was
// performed before some cutoff.
type PreviousExercisePerformance struct {
	Date        time.Time                `json:"date"`
	RoutineName string                   `json:"routine_name"`
	Sets        []PreviousSetPerformance `json:"sets"`
}

// TotalVolume returns Σ weight × reps over the previous session's completed sets.
func (p *PreviousExercisePerformance) TotalVolume() float64 {
	if p == nil {
		return 0
	}
	var v float64
	for _, s := range p.Sets {
		if s.IsCompleted {
			v += s.Weight * float64(s.Reps)
		}
	}
	return v
}

// PreviousPerformance finds the most recent completed session that started
// before the cutoff and contains exerciseName (case-insensitive). When a
// session holds the exercise more than once the first occurrence wins. Returns
// nil when there is no history or the store query fails.
func (s *Service) PreviousPerformance(ctx context.Context, exerciseName string, before time.Time) *PreviousExercisePerformance {
	sessions, err := s.store.FetchSessions(ctx, models.SessionQuery{
		StartedBefore: &before,
		CompletedOnly: true,
		Order:         models.Descending,
	})
	if err != nil {
		s.log.Warn("fetching sessions for previous performance", "exercise", exerciseName, "error", err)
		return nil
	}

	for _, session := range sessions {
		if !session.IsCompleted() || !session.StartTime.Before(before) {
			continue
		}
		for _, ex := range session.Exercises {
			if !strings.EqualFold(ex.Name, exerciseName) {
				continue
			}
			return &PreviousExercisePerformance{
				Date:        session.StartTime,
				RoutineName: session.RoutineName,
				Sets:        previousSets(ex.Sets),
			}
		}
	}
	return nil
}

func previousSets(sets []models.WorkoutSet) []PreviousSetPerformance {
	ordered := sortedSets(sets)
	out := make([]PreviousSetPerformance, 0, len(ordered))
	for _, set := range ordered {
		out = append(out, PreviousSetPerformance{
			Reps:        set.Reps,
			Weight:      set.Weight,
			IsCompleted: set.IsCompleted,
		})
	}
	return out
}

// sortedSets returns a copy of sets ordered by set number. Equal set numbers
// keep their stored order.
func sortedSets(sets []models.WorkoutSet) []models.WorkoutSet {
	out := make([]models.WorkoutSet, len(sets))
	copy(out, sets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out
}
