package scoring

import "time"

// Set is an ordered run of Games within a Match. At most one game is open at
// a time and it is always the highest-numbered one.
type Set struct {
	Number    int        `json:"number"`
	Games     []*Game    `json:"games"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

func newSet(number int, startedAt time.Time) *Set {
	return &Set{Number: number, StartedAt: startedAt}
}

func (s *Set) HasEnded() bool {
	return s.EndedAt != nil
}

// LatestGame returns the highest-numbered game, or nil before the first game.
func (s *Set) LatestGame() *Game {
	if len(s.Games) == 0 {
		return nil
	}
	return s.Games[len(s.Games)-1]
}

// GamesFor counts completed games won by team.
func (s *Set) GamesFor(team Team) int {
	n := 0
	for _, g := range s.Games {
		if w, ok := g.Winner(); ok && w == team {
			n++
		}
	}
	return n
}

// Winner returns the side with more won games, defined only once the set has
// ended. A tied set has no winner.
func (s *Set) Winner() (Team, bool) {
	if !s.HasEnded() {
		return "", false
	}
	us, them := s.GamesFor(TeamUs), s.GamesFor(TeamThem)
	switch {
	case us > them:
		return TeamUs, true
	case them > us:
		return TeamThem, true
	}
	return "", false
}

func (s *Set) HasWinner() bool {
	_, ok := s.Winner()
	return ok
}

func (s *Set) IsTied() bool {
	return s.GamesFor(TeamUs) == s.GamesFor(TeamThem)
}

// startGame appends the next-numbered game and returns it.
func (s *Set) startGame(at time.Time) *Game {
	number := 1
	if g := s.LatestGame(); g != nil {
		number = g.Number + 1
	}
	g := newGame(number, at)
	s.Games = append(s.Games, g)
	return g
}
