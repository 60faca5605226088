// Package progress computes dashboard statistics from workout history.
package progress

import (
	"math"
	"sort"
	"time"

	"fitai-backend/internal/models"
)

const day = 24 * time.Hour

// Stats returns the dashboard counters. Durations are summed in minutes and
// reported in whole hours, rounding half up.
func Stats(history, progress []models.UserProgress, now time.Time) models.WorkoutStats {
	minutes := 0
	for _, h := range history {
		minutes += h.Duration
	}
	return models.WorkoutStats{
		TotalWorkouts:   len(history),
		TotalDuration:   int(math.Floor(float64(minutes)/60 + 0.5)),
		CurrentStreak:   CurrentStreak(history, now),
		ProgressEntries: len(progress),
	}
}

// CurrentStreak walks history newest first, measuring whole days between
// now's midnight and each workout's midnight. A distance equal to the streak
// so far, or one more, extends it; anything else ends it.
func CurrentStreak(history []models.UserProgress, now time.Time) int {
	if len(history) == 0 {
		return 0
	}

	sorted := make([]models.UserProgress, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	loc := now.Location()
	today := midnight(now, loc)

	streak := 0
	for _, w := range sorted {
		diff := today.Sub(midnight(w.Date, loc))
		days := int(math.Floor(float64(diff) / float64(day)))
		if days == streak || days == streak+1 {
			streak++
			continue
		}
		break
	}
	return streak
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
