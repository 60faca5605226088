package models

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Exercise categories: chest, back, shoulders, arms, legs, core, cardio.
type Exercise struct {
	ID           string     `json:"id" toml:"id"`
	Name         string     `json:"name" toml:"name"`
	Category     string     `json:"category" toml:"category"`
	Equipment    []string   `json:"equipment" toml:"equipment"`
	Difficulty   Difficulty `json:"difficulty" toml:"difficulty"`
	Instructions []string   `json:"instructions" toml:"instructions"`
	MuscleGroups []string   `json:"muscleGroups" toml:"muscle_groups"`
	Image        string     `json:"image,omitempty" toml:"image"`
}

// WorkoutSet durations and rest times are in seconds, weight in pounds.
type WorkoutSet struct {
	Reps     int `json:"reps" toml:"reps"`
	Weight   int `json:"weight,omitempty" toml:"weight"`
	Duration int `json:"duration,omitempty" toml:"duration"`
	RestTime int `json:"restTime,omitempty" toml:"rest_time"`
}

type WorkoutExercise struct {
	Exercise Exercise     `json:"exercise"`
	Sets     []WorkoutSet `json:"sets"`
	Notes    string       `json:"notes,omitempty"`
}

// Workout duration is in minutes.
type Workout struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Exercises   []WorkoutExercise `json:"exercises"`
	Duration    int               `json:"duration,omitempty"`
	Difficulty  Difficulty        `json:"difficulty"`
	Category    string            `json:"category"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// WorkoutPlan duration is in weeks.
type WorkoutPlan struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Workouts    []Workout  `json:"workouts"`
	TargetLevel Difficulty `json:"targetLevel"`
}
