package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newProgressHandler(now time.Time) *ProgressHandler {
	h := NewProgressHandler()
	h.now = func() time.Time { return now }
	return h
}

func postStats(h *ProgressHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodPost, "/api/progress/stats", strings.NewReader(body)))
	return rec
}

func TestStats(t *testing.T) {
	h := newProgressHandler(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	rec := postStats(h, `{
		"history": [
			{"id":"1","date":"2026-10-14T08:00:00Z","workoutId":"hiit-cardio","exercises":[],"duration":25},
			{"id":"2","date":"2026-10-13T08:00:00Z","workoutId":"core-strength","exercises":[],"duration":30},
			{"id":"3","date":"2026-10-10T08:00:00Z","workoutId":"core-strength","exercises":[],"duration":45}
		],
		"progress": [
			{"id":"p1","date":"2026-10-14T08:00:00Z","workoutId":"hiit-cardio","exercises":[],"duration":25}
		]
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalWorkouts":3,"totalDuration":2,"currentStreak":2,"progressEntries":1}`, rec.Body.String())
}

func TestStats_TimeZone(t *testing.T) {
	// 20:00 UTC is already the next day in Tokyo, so the workout is "yesterday".
	h := newProgressHandler(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))
	body := `{"history":[{"id":"1","date":"2026-10-14T02:00:00Z","duration":60}],"timeZone":"%s"}`

	rec := postStats(h, strings.Replace(body, "%s", "Asia/Tokyo", 1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentStreak":1`)

	rec = postStats(h, strings.Replace(body, "%s", "Mars/Olympus", 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats_Empty(t *testing.T) {
	rec := postStats(NewProgressHandler(), `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalWorkouts":0,"totalDuration":0,"currentStreak":0,"progressEntries":0}`, rec.Body.String())
}

func TestStats_BadBody(t *testing.T) {
	rec := postStats(NewProgressHandler(), `{"history":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
