package server

import (
	"time"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// MatchState is the full snapshot returned by the match endpoints and pushed
// to the event streams and the live cache.
type MatchState struct {
	ID           string              `json:"id"`
	Sport        scoring.Sport       `json:"sport"`
	Environment  scoring.Environment `json:"environment"`
	TemplateID   string              `json:"templateId,omitempty"`
	Scoring      scoring.MatchRules  `json:"scoring"`
	Warmup       *scoring.Warmup     `json:"warmup,omitempty"`
	Sets         []*scoring.Set      `json:"sets"`
	StartedAt    time.Time           `json:"startedAt"`
	EndedAt      *time.Time          `json:"endedAt,omitempty"`
	HasEnded     bool                `json:"hasEnded"`
	Winner       string              `json:"winner,omitempty"`
	SetsUs       int                 `json:"setsUs"`
	SetsThem     int                 `json:"setsThem"`
	HasMoreGames bool                `json:"hasMoreGames"`
	IsMultiSet   bool                `json:"isMultiSet"`
	Summary      string              `json:"summary"`
	NextServe    string              `json:"nextServe,omitempty"`
}

// matchState snapshots m. The set/game tree is copied so the snapshot can be
// encoded after the match lock is released.
func matchState(id string, m *scoring.Match) MatchState {
	state := MatchState{
		ID:           id,
		Sport:        m.Sport,
		Environment:  m.Environment,
		TemplateID:   m.TemplateID,
		Scoring:      m.Scoring,
		Sets:         cloneSets(m.Sets),
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
		HasEnded:     m.HasEnded(),
		SetsUs:       m.SetsFor(scoring.TeamUs),
		SetsThem:     m.SetsFor(scoring.TeamThem),
		HasMoreGames: m.HasMoreGames(),
		IsMultiSet:   m.IsMultiSet(),
		Summary:      m.ScoreSummary(),
	}
	if w := m.Warmup; w != nil {
		cw := *w
		state.Warmup = &cw
	}
	if winner, ok := m.Winner(); ok {
		state.Winner = string(winner)
	}
	if g := m.LatestGame(); g != nil {
		if serve, ok := g.NextServe(); ok {
			state.NextServe = string(serve)
		}
	}
	return state
}

func cloneSets(sets []*scoring.Set) []*scoring.Set {
	out := make([]*scoring.Set, len(sets))
	for i, s := range sets {
		cs := *s
		cs.Games = make([]*scoring.Game, len(s.Games))
		for j, g := range s.Games {
			cg := *g
			cg.Scores = append([]scoring.GameScore(nil), g.Scores...)
			cs.Games[j] = &cg
		}
		out[i] = &cs
	}
	return out
}
