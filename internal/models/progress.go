package models

import "time"

type ExerciseProgress struct {
	ExerciseID     string       `json:"exerciseId"`
	Sets           []WorkoutSet `json:"sets"`
	PersonalRecord bool         `json:"personalRecord,omitempty"`
}

// UserProgress is one completed workout as recorded by the browser.
// Duration is in minutes.
type UserProgress struct {
	ID        string             `json:"id"`
	Date      time.Time          `json:"date"`
	WorkoutID string             `json:"workoutId"`
	Exercises []ExerciseProgress `json:"exercises"`
	Duration  int                `json:"duration"`
	Notes     string             `json:"notes,omitempty"`
}

// StatsRequest carries the browser-held history to the stats endpoint.
// TimeZone is an IANA name used to find the caller's midnight; empty means UTC.
type StatsRequest struct {
	History  []UserProgress `json:"history"`
	Progress []UserProgress `json:"progress"`
	TimeZone string         `json:"timeZone,omitempty"`
}

// WorkoutStats mirrors the dashboard counters. TotalDuration is in hours.
type WorkoutStats struct {
	TotalWorkouts   int `json:"totalWorkouts"`
	TotalDuration   int `json:"totalDuration"`
	CurrentStreak   int `json:"currentStreak"`
	ProgressEntries int `json:"progressEntries"`
}
