package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// CreateMatchRequest starts a match either from a stored template (rules
// copied by value at creation time) or from inline rules.
type CreateMatchRequest struct {
	TemplateID  string              `json:"templateId,omitempty"`
	MarkAsUsed  *bool               `json:"markAsUsed,omitempty"`
	Sport       scoring.Sport       `json:"sport,omitempty"`
	Environment scoring.Environment `json:"environment,omitempty"`
	Scoring     *scoring.MatchRules `json:"scoring,omitempty"`
}

func handleCreateMatch(store Store, reg *Registry, live *LiveCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMatchRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var m *scoring.Match

		switch {
		case req.TemplateID != "":
			tpl, err := store.GetTemplate(r.Context(), req.TemplateID)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "template not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			markAsUsed := req.MarkAsUsed == nil || *req.MarkAsUsed
			m = tpl.CreateMatch(markAsUsed)
			if markAsUsed {
				if err := store.TouchTemplate(r.Context(), tpl.ID, *tpl.LastUsedAt); err != nil {
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
			}

		case req.Scoring != nil:
			sport := req.Sport
			if sport == "" {
				sport = scoring.SportVolleyball
			}
			environment := req.Environment
			if environment == "" {
				environment = scoring.EnvironmentIndoor
			}
			if !sport.Valid() || !environment.Valid() {
				writeError(w, http.StatusBadRequest, "unknown sport or environment")
				return
			}

			var err error
			m, err = scoring.NewMatch(sport, environment, *req.Scoring)
			if errors.Is(err, scoring.ErrInvalidConfig) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

		default:
			writeError(w, http.StatusBadRequest, "templateId or scoring is required")
			return
		}

		id, err := store.CreateMatch(r.Context(), m)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		lm := reg.Put(id, m)
		state := lm.state()
		live.Update(r.Context(), id, state)

		writeJSON(w, http.StatusCreated, state)
	}
}

func handleListMatches(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := store.ListMatches(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if matches == nil {
			matches = []MatchSummary{}
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func handleGetMatch(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lm, err := reg.Get(r.Context(), chi.URLParam(r, "matchID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, lm.state())
	}
}

func handleDeleteMatch(store Store, reg *Registry, live *LiveCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "matchID")

		err := store.DeleteMatch(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		reg.Forget(id)
		live.Remove(r.Context(), id)

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
