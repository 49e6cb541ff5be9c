package scoring

import (
	"fmt"
	"time"
)

// GameScore is one appended record per scoring action. The log is append-only
// and time-ordered; running totals on the Game are a cached projection of it.
type GameScore struct {
	Team      Team      `json:"team"`
	Change    int       `json:"change"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Game is the smallest scoring unit: a point tally plus the ordered event log
// behind it. A Game is created by its owning Set and never re-opens once
// EndedAt is stamped.
type Game struct {
	Number    int         `json:"number"`
	ScoreUs   int         `json:"scoreUs"`
	ScoreThem int         `json:"scoreThem"`
	Scores    []GameScore `json:"scores"`

	// InitialServe is the side serving first, when tracked. Empty otherwise.
	InitialServe Team `json:"initialServe,omitempty"`

	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

func newGame(number int, startedAt time.Time) *Game {
	return &Game{Number: number, StartedAt: startedAt}
}

func (g *Game) HasEnded() bool {
	return g.EndedAt != nil
}

// Winner returns the leading side, defined only once the game has ended.
// Ties have no winner.
func (g *Game) Winner() (Team, bool) {
	if !g.HasEnded() {
		return "", false
	}
	switch {
	case g.ScoreUs > g.ScoreThem:
		return TeamUs, true
	case g.ScoreThem > g.ScoreUs:
		return TeamThem, true
	}
	return "", false
}

func (g *Game) HasWinner() bool {
	_, ok := g.Winner()
	return ok
}

func (g *Game) IsTied() bool {
	return g.ScoreUs == g.ScoreThem
}

// ScoreFor returns the running total for team.
func (g *Game) ScoreFor(team Team) int {
	if team == TeamUs {
		return g.ScoreUs
	}
	return g.ScoreThem
}

// ScoreTo sets team's total to an absolute value, recording the delta in the
// event log. This is the correction path: the change may be negative. It is
// rejected once the game has ended.
func (g *Game) ScoreTo(team Team, total int, at time.Time) error {
	if !team.Valid() {
		return fmt.Errorf("unknown team %q", team)
	}
	if g.HasEnded() {
		return fmt.Errorf("%w: game %d has ended", ErrInvalidTransition, g.Number)
	}
	g.record(team, total, at)
	return nil
}

// score adds one point for team. Callers guard against ended games.
func (g *Game) score(team Team, at time.Time) {
	g.record(team, g.ScoreFor(team)+1, at)
}

func (g *Game) record(team Team, total int, at time.Time) {
	change := total - g.ScoreFor(team)
	if team == TeamUs {
		g.ScoreUs = total
	} else {
		g.ScoreThem = total
	}
	g.Scores = append(g.Scores, GameScore{
		Team:      team,
		Change:    change,
		Total:     total,
		Timestamp: at,
	})
}

// ScoreStreakFor walks the event log backward from the most recent event,
// summing changes for team and stopping at the first event by the other side.
// Returns 0 when the latest point was not this team's.
func (g *Game) ScoreStreakFor(team Team) int {
	streak := 0
	for i := len(g.Scores) - 1; i >= 0; i-- {
		if g.Scores[i].Team != team {
			break
		}
		streak += g.Scores[i].Change
	}
	return streak
}

// NextServe returns the side serving next: whoever scored last, or the
// initial serve before any point. Undefined once the game has ended.
func (g *Game) NextServe() (Team, bool) {
	if g.HasEnded() {
		return "", false
	}
	if n := len(g.Scores); n > 0 {
		return g.Scores[n-1].Team, true
	}
	if g.InitialServe.Valid() {
		return g.InitialServe, true
	}
	return "", false
}
