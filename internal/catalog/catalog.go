// Package catalog serves the built-in exercises, workout templates and
// multi-week plans.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"fitai-backend/internal/models"
)

//go:embed data/exercises.toml data/workouts.toml
var dataFS embed.FS

var ErrNotFound = errors.New("not found")

// Catalog is read-only after Load. Returned values share nested slices with
// the catalog and must not be modified.
type Catalog struct {
	exercises  []models.Exercise
	templates  []models.Workout
	plans      []models.WorkoutPlan
	exerciseIx map[string]int
	templateIx map[string]int
	planIx     map[string]int
}

type exerciseFile struct {
	Exercises []models.Exercise `toml:"exercises"`
}

type workoutFile struct {
	Templates []struct {
		ID          string            `toml:"id"`
		Name        string            `toml:"name"`
		Description string            `toml:"description"`
		Duration    int               `toml:"duration"`
		Difficulty  models.Difficulty `toml:"difficulty"`
		Category    string            `toml:"category"`
		Exercises   []struct {
			Exercise string              `toml:"exercise"`
			Notes    string              `toml:"notes"`
			Sets     []models.WorkoutSet `toml:"sets"`
		} `toml:"exercises"`
	} `toml:"templates"`
	Plans []struct {
		ID          string            `toml:"id"`
		Name        string            `toml:"name"`
		Description string            `toml:"description"`
		Duration    int               `toml:"duration"`
		TargetLevel models.Difficulty `toml:"target_level"`
		Workouts    []string          `toml:"workouts"`
	} `toml:"plans"`
}

// Load parses the embedded seed data.
func Load() (*Catalog, error) {
	ex, err := dataFS.ReadFile("data/exercises.toml")
	if err != nil {
		return nil, err
	}
	wk, err := dataFS.ReadFile("data/workouts.toml")
	if err != nil {
		return nil, err
	}
	return Parse(ex, wk, time.Now().UTC())
}

// Parse builds a catalog from TOML documents. Template exercises and plan
// workouts are references by id and must resolve.
func Parse(exercisesTOML, workoutsTOML []byte, createdAt time.Time) (*Catalog, error) {
	var ef exerciseFile
	if _, err := toml.Decode(string(exercisesTOML), &ef); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	var wf workoutFile
	if _, err := toml.Decode(string(workoutsTOML), &wf); err != nil {
		return nil, fmt.Errorf("decode workouts: %w", err)
	}

	c := &Catalog{
		exercises:  ef.Exercises,
		exerciseIx: make(map[string]int, len(ef.Exercises)),
		templateIx: make(map[string]int, len(wf.Templates)),
		planIx:     make(map[string]int, len(wf.Plans)),
	}

	for i, e := range c.exercises {
		if e.ID == "" {
			return nil, fmt.Errorf("exercise %d: missing id", i)
		}
		if _, dup := c.exerciseIx[e.ID]; dup {
			return nil, fmt.Errorf("exercise %q: duplicate id", e.ID)
		}
		if !e.Difficulty.Valid() {
			return nil, fmt.Errorf("exercise %q: invalid difficulty %q", e.ID, e.Difficulty)
		}
		c.exerciseIx[e.ID] = i
	}

	for _, t := range wf.Templates {
		if _, dup := c.templateIx[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		if !t.Difficulty.Valid() {
			return nil, fmt.Errorf("template %q: invalid difficulty %q", t.ID, t.Difficulty)
		}
		w := models.Workout{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Duration:    t.Duration,
			Difficulty:  t.Difficulty,
			Category:    t.Category,
			CreatedAt:   createdAt,
			Exercises:   make([]models.WorkoutExercise, 0, len(t.Exercises)),
		}
		for _, te := range t.Exercises {
			ix, ok := c.exerciseIx[te.Exercise]
			if !ok {
				return nil, fmt.Errorf("template %q: unknown exercise %q", t.ID, te.Exercise)
			}
			w.Exercises = append(w.Exercises, models.WorkoutExercise{
				Exercise: c.exercises[ix],
				Sets:     te.Sets,
				Notes:    te.Notes,
			})
		}
		c.templateIx[t.ID] = len(c.templates)
		c.templates = append(c.templates, w)
	}

	for _, p := range wf.Plans {
		if _, dup := c.planIx[p.ID]; dup {
			return nil, fmt.Errorf("plan %q: duplicate id", p.ID)
		}
		plan := models.WorkoutPlan{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Duration:    p.Duration,
			TargetLevel: p.TargetLevel,
			Workouts:    make([]models.Workout, 0, len(p.Workouts)),
		}
		for _, id := range p.Workouts {
			ix, ok := c.templateIx[id]
			if !ok {
				return nil, fmt.Errorf("plan %q: unknown workout %q", p.ID, id)
			}
			plan.Workouts = append(plan.Workouts, c.templates[ix])
		}
		c.planIx[p.ID] = len(c.plans)
		c.plans = append(c.plans, plan)
	}

	return c, nil
}

// ExerciseFilter narrows Exercises. Zero fields match everything.
type ExerciseFilter struct {
	Category   string
	Difficulty models.Difficulty
	// Equipment matches exercises using any of the listed items.
	Equipment []string
}

func (c *Catalog) Exercises(f ExerciseFilter) []models.Exercise {
	out := make([]models.Exercise, 0, len(c.exercises))
	for _, e := range c.exercises {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && e.Difficulty != f.Difficulty {
			continue
		}
		if len(f.Equipment) > 0 && !anyOf(e.Equipment, f.Equipment) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (c *Catalog) Exercise(id string) (models.Exercise, error) {
	ix, ok := c.exerciseIx[id]
	if !ok {
		return models.Exercise{}, fmt.Errorf("exercise %q: %w", id, ErrNotFound)
	}
	return c.exercises[ix], nil
}

// TemplateFilter narrows Templates. Category matches case-insensitively on
// a substring, so "body" finds both "Upper Body" and "Lower Body".
type TemplateFilter struct {
	Difficulty models.Difficulty
	Category   string
}

func (c *Catalog) Templates(f TemplateFilter) []models.Workout {
	category := strings.ToLower(f.Category)
	out := make([]models.Workout, 0, len(c.templates))
	for _, w := range c.templates {
		if f.Difficulty != "" && w.Difficulty != f.Difficulty {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(w.Category), category) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (c *Catalog) Template(id string) (models.Workout, error) {
	ix, ok := c.templateIx[id]
	if !ok {
		return models.Workout{}, fmt.Errorf("workout %q: %w", id, ErrNotFound)
	}
	return c.templates[ix], nil
}

func (c *Catalog) Plans() []models.WorkoutPlan {
	out := make([]models.WorkoutPlan, len(c.plans))
	copy(out, c.plans)
	return out
}

func (c *Catalog) Plan(id string) (models.WorkoutPlan, error) {
	ix, ok := c.planIx[id]
	if !ok {
		return models.WorkoutPlan{}, fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	return c.plans[ix], nil
}

func anyOf(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
