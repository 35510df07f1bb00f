package progress

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// ExerciseProgressDataPoint summarizes one exercise within one session.
type ExerciseProgressDataPoint struct {
	Date               time.Time `json:"date"`
	MaxWeight          float64   `json:"max_weight"`
	EstimatedOneRepMax float64   `json:"estimated_one_rep_max"`
	TotalVolume        float64   `json:"total_volume"`
	TotalSets          int       `json:"total_sets"`
	TotalReps          int       `json:"total_reps"`
	SessionID          uuid.UUID `json:"session_id"`
}

// ExerciseProgressData is the time series for one exercise, oldest first.
type ExerciseProgressData struct {
	ExerciseName string                      `json:"exercise_name"`
	DataPoints   []ExerciseProgressDataPoint `json:"data_points"`
}

// First returns the oldest data point.
func (d ExerciseProgressData) First() (ExerciseProgressDataPoint, bool) {
	if len(d.DataPoints) == 0 {
		return ExerciseProgressDataPoint{}, false
	}
	return d.DataPoints[0], true
}

// Last returns the newest data point.
func (d ExerciseProgressData) Last() (ExerciseProgressDataPoint, bool) {
	if len(d.DataPoints) == 0 {
		return ExerciseProgressDataPoint{}, false
	}
	return d.DataPoints[len(d.DataPoints)-1], true
}

// MaxWeightChange is the max weight of the newest point minus the oldest.
// Undefined with fewer than two points.
func (d ExerciseProgressData) MaxWeightChange() (float64, bool) {
	if len(d.DataPoints) < 2 {
		return 0, false
	}
	first, _ := d.First()
	last, _ := d.Last()
	return last.MaxWeight - first.MaxWeight, true
}

// OneRepMaxChange is the estimated 1RM of the newest point minus the oldest.
// Undefined with fewer than two points.
func (d ExerciseProgressData) OneRepMaxChange() (float64, bool) {
	if len(d.DataPoints) < 2 {
		return 0, false
	}
	first, _ := d.First()
	last, _ := d.Last()
	return last.EstimatedOneRepMax - first.EstimatedOneRepMax, true
}

// PersonalBest returns the point with the highest estimated 1RM. The earliest
// point wins ties.
func (d ExerciseProgressData) PersonalBest() (ExerciseProgressDataPoint, bool) {
	if len(d.DataPoints) == 0 {
		return ExerciseProgressDataPoint{}, false
	}
	best := d.DataPoints[0]
	for _, p := range d.DataPoints[1:] {
		if p.EstimatedOneRepMax > best.EstimatedOneRepMax {
			best = p
		}
	}
	return best, true
}

// ProgressData builds the progress series for exerciseName over the given
// timeframe. Only completed sessions are considered. A store failure is
// logged and yields an empty series.
func (s *Service) ProgressData(ctx context.Context, exerciseName string, tf Timeframe) ExerciseProgressData {
	result := ExerciseProgressData{ExerciseName: exerciseName, DataPoints: []ExerciseProgressDataPoint{}}

	sessions, err := s.store.FetchSessions(ctx, s.windowQuery(tf))
	if err != nil {
		s.log.Warn("fetching sessions for progress", "exercise", exerciseName, "timeframe", tf, "error", err)
		return result
	}

	for _, session := range sessions {
		if !session.IsCompleted() {
			continue
		}
		for _, ex := range session.Exercises {
			if !strings.EqualFold(ex.Name, exerciseName) {
				continue
			}
			completed := TotalSets(ex.Sets)
			if completed == 0 {
				continue
			}
			result.DataPoints = append(result.DataPoints, ExerciseProgressDataPoint{
				Date:               session.StartTime,
				MaxWeight:          MaxWeight(ex.Sets),
				EstimatedOneRepMax: EstimatedOneRepMax(ex.Sets),
				TotalVolume:        TotalVolume(ex.Sets),
				TotalSets:          completed,
				TotalReps:          TotalReps(ex.Sets),
				SessionID:          session.ID,
			})
		}
	}

	// Series must be ascending by session start.
	sort.SliceStable(result.DataPoints, func(i, j int) bool {
		return result.DataPoints[i].Date.Before(result.DataPoints[j].Date)
	})
	return result
}

// ExerciseNames lists the distinct exercise names found in completed sessions
// within the timeframe. Names are deduplicated case-insensitively, keeping the
// first spelling seen, and sorted case-insensitively.
func (s *Service) ExerciseNames(ctx context.Context, tf Timeframe) []string {
	names := []string{}

	sessions, err := s.store.FetchSessions(ctx, s.windowQuery(tf))
	if err != nil {
		s.log.Warn("fetching sessions for exercise names", "timeframe", tf, "error", err)
		return names
	}

	seen := make(map[string]bool)
	for _, session := range sessions {
		for _, ex := range session.Exercises {
			key := strings.ToLower(ex.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, ex.Name)
		}
	}

	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func (s *Service) windowQuery(tf Timeframe) models.SessionQuery {
	q := models.SessionQuery{CompletedOnly: true, Order: models.Ascending}
	if start := tf.StartDate(s.now()); !start.IsZero() {
		q.StartedFrom = &start
	}
	return q
}
