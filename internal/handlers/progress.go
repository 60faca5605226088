package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	_ "time/tzdata"

	"fitai-backend/internal/models"
	"fitai-backend/internal/progress"
)

type ProgressHandler struct {
	now func() time.Time
}

func NewProgressHandler() *ProgressHandler {
	return &ProgressHandler{now: time.Now}
}

func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req models.StatsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", r))
		return
	}

	loc := time.UTC
	if req.TimeZone != "" {
		l, err := time.LoadLocation(req.TimeZone)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("Invalid time zone", r))
			return
		}
		loc = l
	}

	writeJSON(w, http.StatusOK, progress.Stats(req.History, req.Progress, h.now().In(loc)))
}
