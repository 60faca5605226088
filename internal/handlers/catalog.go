package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fitai-backend/internal/catalog"
	"fitai-backend/internal/models"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	difficulty, ok := parseDifficulty(q.Get("difficulty"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid difficulty", r))
		return
	}

	exercises := h.catalog.Exercises(catalog.ExerciseFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Difficulty: difficulty,
		Equipment:  splitList(q.Get("equipment")),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exercises": exercises,
		"total":     len(exercises),
	})
}

func (h *CatalogHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := h.catalog.Exercise(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, err, "Exercise not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	difficulty, ok := parseDifficulty(q.Get("difficulty"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid difficulty", r))
		return
	}

	templates := h.catalog.Templates(catalog.TemplateFilter{
		Difficulty: difficulty,
		Category:   strings.TrimSpace(q.Get("category")),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workouts": templates,
		"total":    len(templates),
	})
}

func (h *CatalogHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Template(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, err, "Workout not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *CatalogHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.catalog.Plans()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plans": plans,
		"total": len(plans),
	})
}

func (h *CatalogHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Plan(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, err, "Plan not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) notFound(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp(msg, r))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResp("An unexpected error occurred", r))
}

func parseDifficulty(v string) (models.Difficulty, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", true
	}
	d := models.Difficulty(v)
	return d, d.Valid()
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
