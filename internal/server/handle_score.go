package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

type ScoreRequest struct {
	Team scoring.Team `json:"team"`
}

// mutateMatch runs one engine operation for the match in the URL, persists
// the tree, publishes the events fn collected, refreshes the live cache, and
// writes the fresh snapshot. Invalid transitions map to 409.
func mutateMatch(reg *Registry, store Store, broker *Broker, live *LiveCache,
	fn func(m *scoring.Match, events *[]MatchEvent) error) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "matchID")

		lm, err := reg.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var events []MatchEvent
		state, err := lm.update(r.Context(), store, func(m *scoring.Match) error {
			return fn(m, &events)
		})
		if errors.Is(err, scoring.ErrInvalidTransition) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		for _, ev := range events {
			broker.Publish(id, ev)
		}
		live.Update(r.Context(), id, state)

		writeJSON(w, http.StatusOK, state)
	}
}

func handleScore(reg *Registry, store Store, broker *Broker, live *LiveCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !req.Team.Valid() {
			writeError(w, http.StatusBadRequest, "team must be \"us\" or \"them\"")
			return
		}

		mutateMatch(reg, store, broker, live, func(m *scoring.Match, events *[]MatchEvent) error {
			if err := m.Score(req.Team); err != nil {
				return err
			}

			set := m.LatestSet()
			game := m.LatestGame()
			*events = append(*events, MatchEvent{
				Type:       EventPointScored,
				Team:       string(req.Team),
				SetNumber:  set.Number,
				GameNumber: game.Number,
				ScoreUs:    game.ScoreUs,
				ScoreThem:  game.ScoreThem,
				Streak:     game.ScoreStreakFor(req.Team),
			})

			if game.HasEnded() {
				winner, _ := game.Winner()
				*events = append(*events, MatchEvent{
					Type:       EventGameEnded,
					SetNumber:  set.Number,
					GameNumber: game.Number,
					ScoreUs:    game.ScoreUs,
					ScoreThem:  game.ScoreThem,
					Winner:     string(winner),
				})
			}
			if set.HasEnded() {
				winner, _ := set.Winner()
				*events = append(*events, MatchEvent{
					Type:      EventSetEnded,
					SetNumber: set.Number,
					Winner:    string(winner),
				})
			}
			return nil
		}).ServeHTTP(w, r)
	}
}

func handleStartGame(reg *Registry, store Store, broker *Broker, live *LiveCache) http.HandlerFunc {
	return mutateMatch(reg, store, broker, live, func(m *scoring.Match, events *[]MatchEvent) error {
		warmupWasOpen := m.Warmup != nil && !m.Warmup.HasEnded()
		priorSet := m.LatestSet()

		if err := m.StartGame(); err != nil {
			return err
		}

		if warmupWasOpen {
			*events = append(*events, MatchEvent{Type: EventWarmupEnded})
		}
		if priorSet != nil && priorSet.HasEnded() && priorSet != m.LatestSet() {
			winner, _ := priorSet.Winner()
			*events = append(*events, MatchEvent{
				Type:      EventSetEnded,
				SetNumber: priorSet.Number,
				Winner:    string(winner),
			})
		}
		if game := m.LatestGame(); game != nil && !game.HasEnded() {
			*events = append(*events, MatchEvent{
				Type:       EventGameStarted,
				SetNumber:  m.LatestSet().Number,
				GameNumber: game.Number,
			})
		}
		return nil
	})
}

func handleStartWarmup(reg *Registry, store Store, broker *Broker, live *LiveCache) http.HandlerFunc {
	return mutateMatch(reg, store, broker, live, func(m *scoring.Match, events *[]MatchEvent) error {
		hadWarmup := m.Warmup != nil
		if err := m.StartWarmup(); err != nil {
			return err
		}
		if !hadWarmup {
			*events = append(*events, MatchEvent{Type: EventWarmupStarted})
		}
		return nil
	})
}

func handleEndWarmup(reg *Registry, store Store, broker *Broker, live *LiveCache) http.HandlerFunc {
	return mutateMatch(reg, store, broker, live, func(m *scoring.Match, events *[]MatchEvent) error {
		if m.Warmup == nil {
			return fmt.Errorf("%w: no warmup to end", scoring.ErrInvalidTransition)
		}
		if !m.Warmup.HasEnded() {
			m.Warmup.End()
			*events = append(*events, MatchEvent{Type: EventWarmupEnded})
		}
		return nil
	})
}

func handleEndMatch(reg *Registry, store Store, broker *Broker, live *LiveCache) http.HandlerFunc {
	return mutateMatch(reg, store, broker, live, func(m *scoring.Match, events *[]MatchEvent) error {
		alreadyEnded := m.HasEnded()
		if err := m.End(); err != nil {
			return err
		}
		if !alreadyEnded {
			winner, _ := m.Winner()
			*events = append(*events, MatchEvent{
				Type:    EventMatchEnded,
				Winner:  string(winner),
				Summary: m.ScoreSummary(),
			})
		}
		return nil
	})
}
