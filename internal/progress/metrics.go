package progress

import "github.com/claude/ironlog/internal/models"

// EpleyOneRepMax estimates a one-rep max as weight × (1 + reps/30).
func EpleyOneRepMax(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// MaxWeight returns the heaviest completed set, or 0.
func MaxWeight(sets []models.WorkoutSet) float64 {
	var max float64
	for _, s := range sets {
		if s.IsCompleted && s.Weight > max {
			max = s.Weight
		}
	}
	return max
}

// TotalVolume returns Σ weight × reps over completed sets.
func TotalVolume(sets []models.WorkoutSet) float64 {
	var v float64
	for _, s := range sets {
		if s.IsCompleted {
			v += s.Weight * float64(s.Reps)
		}
	}
	return v
}

// TotalReps sums reps over completed sets.
func TotalReps(sets []models.WorkoutSet) int {
	n := 0
	for _, s := range sets {
		if s.IsCompleted {
			n += s.Reps
		}
	}
	return n
}

// TotalSets counts completed sets.
func TotalSets(sets []models.WorkoutSet) int {
	n := 0
	for _, s := range sets {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// EstimatedOneRepMax returns the best single-set Epley estimate over completed
// sets with a positive weight, or 0. Bodyweight and warm-up sets do not count.
func EstimatedOneRepMax(sets []models.WorkoutSet) float64 {
	var best float64
	for _, s := range sets {
		if !s.IsCompleted || s.Weight <= 0 {
			continue
		}
		if e := EpleyOneRepMax(s.Weight, s.Reps); e > best {
			best = e
		}
	}
	return best
}
