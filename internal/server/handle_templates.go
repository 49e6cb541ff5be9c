package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// TemplateRequest is the body for creating and updating templates.
type TemplateRequest struct {
	Sport        scoring.Sport         `json:"sport"`
	Name         string                `json:"name"`
	Color        scoring.TemplateColor `json:"color,omitempty"`
	Environment  scoring.Environment   `json:"environment,omitempty"`
	Scoring      *scoring.MatchRules   `json:"scoring,omitempty"`
	Warmup       scoring.WarmupRule    `json:"warmup,omitempty"`
	StartWorkout *bool                 `json:"startWorkout,omitempty"`
}

// apply folds the request onto t, validating enums and rules. Omitted rules
// fall back to the sport's default preset.
func (req TemplateRequest) apply(t *scoring.Template) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name is required")
	}
	if !req.Sport.Valid() {
		return errors.New("unknown sport")
	}
	t.Sport = req.Sport
	t.Name = req.Name

	if req.Color != "" {
		if !req.Color.Valid() {
			return errors.New("unknown color")
		}
		t.Color = req.Color
	}
	if req.Environment != "" {
		if !req.Environment.Valid() {
			return errors.New("unknown environment")
		}
		t.Environment = req.Environment
	}
	if req.Warmup != "" {
		if !req.Warmup.Valid() {
			return errors.New("unknown warmup rule")
		}
		t.Warmup = req.Warmup
	}
	if req.StartWorkout != nil {
		t.StartWorkout = *req.StartWorkout
	}

	if req.Scoring != nil {
		if err := req.Scoring.Validate(); err != nil {
			return err
		}
		t.Scoring = *req.Scoring
	} else if t.Scoring.SetsWinAt == 0 {
		t.Scoring = scoring.DefaultRules(t.Sport)
	}
	return nil
}

func handleListTemplates(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := store.ListTemplates(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if templates == nil {
			templates = []*scoring.Template{}
		}
		writeJSON(w, http.StatusOK, templates)
	}
}

func handleGetTemplate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func handleCreateTemplate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TemplateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := scoring.NewTemplate(req.Sport, req.Name, scoring.DefaultRules(req.Sport))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.apply(t); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := store.CreateTemplate(r.Context(), t); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func handleUpdateTemplate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var req TemplateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.apply(t); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Edits never reach matches already created from this template;
		// their rules were copied by value.
		if err := store.UpdateTemplate(r.Context(), t); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func handleDeleteTemplate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteTemplate(r.Context(), chi.URLParam(r, "templateID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
