package scoring

import "fmt"

// GameRules decides whether a game has a winner: a side wins the moment its
// score reaches WinScore with a lead of at least WinBy. MaximumScore is the
// advertised score cap ("25, win by 2, cap 27") and is carried for display
// and validation only; the win condition itself never consults it.
type GameRules struct {
	WinScore     int `json:"winScore"`
	MaximumScore int `json:"maximumScore"`
	WinBy        int `json:"winBy"`
}

// NewGameRules builds validated game rules. A zero maximumScore defaults to
// winScore and a zero winBy defaults to 1.
func NewGameRules(winScore, maximumScore, winBy int) (GameRules, error) {
	if maximumScore == 0 {
		maximumScore = winScore
	}
	if winBy == 0 {
		winBy = 1
	}
	r := GameRules{WinScore: winScore, MaximumScore: maximumScore, WinBy: winBy}
	if err := r.Validate(); err != nil {
		return GameRules{}, err
	}
	return r, nil
}

func (r GameRules) Validate() error {
	if r.WinScore < 1 {
		return fmt.Errorf("%w: winScore must be at least 1, got %d", ErrInvalidConfig, r.WinScore)
	}
	if r.WinBy < 1 {
		return fmt.Errorf("%w: winBy must be at least 1, got %d", ErrInvalidConfig, r.WinBy)
	}
	if r.MaximumScore < r.WinScore {
		return fmt.Errorf("%w: maximumScore %d is below winScore %d", ErrInvalidConfig, r.MaximumScore, r.WinScore)
	}
	return nil
}

// Winner returns the side that has won g under these rules, if any. Pure
// function of the two running totals.
func (r GameRules) Winner(g *Game) (Team, bool) {
	switch {
	case g.ScoreUs >= r.WinScore && g.ScoreUs-g.ScoreThem >= r.WinBy:
		return TeamUs, true
	case g.ScoreThem >= r.WinScore && g.ScoreThem-g.ScoreUs >= r.WinBy:
		return TeamThem, true
	}
	return "", false
}

func (r GameRules) HasWinner(g *Game) bool {
	_, ok := r.Winner(g)
	return ok
}

// SetRules decides whether a set has a winner given its completed games, and
// whether another game may be played. The tiebreaker variant is carried for
// formats that present a different final game but, matching observed behavior,
// the engine scores every game of a set under GameScoring.
type SetRules struct {
	GamesWinAt            int       `json:"gamesWinAt"`
	GamesMaximum          int       `json:"gamesMaximum"`
	PlayItOut             bool      `json:"playItOut"`
	GameScoring           GameRules `json:"gameScoring"`
	GameTiebreakerScoring GameRules `json:"gameTiebreakerScoring"`
}

// NewSetRules builds validated set rules. A zero gamesMaximum defaults to
// 2*gamesWinAt-1 (best-of) and a zero tiebreaker falls back to gameScoring.
func NewSetRules(gamesWinAt, gamesMaximum int, playItOut bool, gameScoring GameRules, tiebreaker *GameRules) (SetRules, error) {
	if gamesMaximum == 0 {
		gamesMaximum = 2*gamesWinAt - 1
	}
	tb := gameScoring
	if tiebreaker != nil {
		tb = *tiebreaker
	}
	r := SetRules{
		GamesWinAt:            gamesWinAt,
		GamesMaximum:          gamesMaximum,
		PlayItOut:             playItOut,
		GameScoring:           gameScoring,
		GameTiebreakerScoring: tb,
	}
	if err := r.Validate(); err != nil {
		return SetRules{}, err
	}
	return r, nil
}

func (r SetRules) Validate() error {
	if r.GamesWinAt < 1 {
		return fmt.Errorf("%w: gamesWinAt must be at least 1, got %d", ErrInvalidConfig, r.GamesWinAt)
	}
	if r.GamesMaximum < r.GamesWinAt {
		return fmt.Errorf("%w: gamesMaximum %d is below gamesWinAt %d", ErrInvalidConfig, r.GamesMaximum, r.GamesWinAt)
	}
	if err := r.GameScoring.Validate(); err != nil {
		return err
	}
	return r.GameTiebreakerScoring.Validate()
}

// IsMultiGame reports whether a set under these rules spans more than one game.
func (r SetRules) IsMultiGame() bool {
	return r.GamesWinAt > 1
}

// Winner returns the side that has won s: the set's own cached winner when it
// has ended, otherwise the first side whose completed-game count reaches
// GamesWinAt.
func (r SetRules) Winner(s *Set) (Team, bool) {
	if w, ok := s.Winner(); ok {
		return w, true
	}
	switch {
	case s.GamesFor(TeamUs) >= r.GamesWinAt:
		return TeamUs, true
	case s.GamesFor(TeamThem) >= r.GamesWinAt:
		return TeamThem, true
	}
	return "", false
}

func (r SetRules) HasWinner(s *Set) bool {
	_, ok := r.Winner(s)
	return ok
}

// CanPlayAnotherGame reports whether one more game may start in s: under
// play-it-out, while the game count stays within GamesMaximum; otherwise,
// while the set has no winner.
func (r SetRules) CanPlayAnotherGame(s *Set) bool {
	if r.PlayItOut {
		return len(s.Games)+1 <= r.GamesMaximum
	}
	return !r.HasWinner(s)
}

// MatchRules is SetRules one level up: it governs whether the match has a
// winner by set count and whether another set may start.
type MatchRules struct {
	SetsWinAt            int      `json:"setsWinAt"`
	SetsMaximum          int      `json:"setsMaximum"`
	PlayItOut            bool     `json:"playItOut"`
	SetScoring           SetRules `json:"setScoring"`
	SetTiebreakerScoring SetRules `json:"setTiebreakerScoring"`
}

// NewMatchRules builds validated match rules. A zero setsMaximum defaults to
// 2*setsWinAt-1 and a zero tiebreaker falls back to setScoring.
func NewMatchRules(setsWinAt, setsMaximum int, playItOut bool, setScoring SetRules, tiebreaker *SetRules) (MatchRules, error) {
	if setsMaximum == 0 {
		setsMaximum = 2*setsWinAt - 1
	}
	tb := setScoring
	if tiebreaker != nil {
		tb = *tiebreaker
	}
	r := MatchRules{
		SetsWinAt:            setsWinAt,
		SetsMaximum:          setsMaximum,
		PlayItOut:            playItOut,
		SetScoring:           setScoring,
		SetTiebreakerScoring: tb,
	}
	if err := r.Validate(); err != nil {
		return MatchRules{}, err
	}
	return r, nil
}

func (r MatchRules) Validate() error {
	if r.SetsWinAt < 1 {
		return fmt.Errorf("%w: setsWinAt must be at least 1, got %d", ErrInvalidConfig, r.SetsWinAt)
	}
	if r.SetsMaximum < r.SetsWinAt {
		return fmt.Errorf("%w: setsMaximum %d is below setsWinAt %d", ErrInvalidConfig, r.SetsMaximum, r.SetsWinAt)
	}
	if err := r.SetScoring.Validate(); err != nil {
		return err
	}
	return r.SetTiebreakerScoring.Validate()
}

// IsMultiSet reports whether the match format spans more than one set.
func (r MatchRules) IsMultiSet() bool {
	return r.SetsWinAt > 1
}

// Winner returns the side that has won m: the match's own cached winner when
// it has ended, otherwise the first side whose won-set count reaches SetsWinAt.
func (r MatchRules) Winner(m *Match) (Team, bool) {
	if w, ok := m.Winner(); ok {
		return w, true
	}
	switch {
	case m.SetsFor(TeamUs) >= r.SetsWinAt:
		return TeamUs, true
	case m.SetsFor(TeamThem) >= r.SetsWinAt:
		return TeamThem, true
	}
	return "", false
}

func (r MatchRules) HasWinner(m *Match) bool {
	_, ok := r.Winner(m)
	return ok
}

// CanPlayAnotherSet mirrors CanPlayAnotherGame one level up.
func (r MatchRules) CanPlayAnotherSet(m *Match) bool {
	if r.PlayItOut {
		return len(m.Sets)+1 <= r.SetsMaximum
	}
	return !r.HasWinner(m)
}

// DefaultRules returns the stock rule preset for a sport. Every preset is
// valid by construction.
func DefaultRules(sport Sport) MatchRules {
	switch sport {
	case SportSquash:
		// Best of 5 games to 11, win by 2.
		game := GameRules{WinScore: 11, MaximumScore: 11, WinBy: 2}
		return MatchRules{
			SetsWinAt: 1, SetsMaximum: 1,
			SetScoring:           SetRules{GamesWinAt: 3, GamesMaximum: 5, GameScoring: game, GameTiebreakerScoring: game},
			SetTiebreakerScoring: SetRules{GamesWinAt: 3, GamesMaximum: 5, GameScoring: game, GameTiebreakerScoring: game},
		}
	case SportUltimate:
		// Single game to 15, soft cap 17, win by 2.
		game := GameRules{WinScore: 15, MaximumScore: 17, WinBy: 2}
		return MatchRules{
			SetsWinAt: 1, SetsMaximum: 1,
			SetScoring:           SetRules{GamesWinAt: 1, GamesMaximum: 1, GameScoring: game, GameTiebreakerScoring: game},
			SetTiebreakerScoring: SetRules{GamesWinAt: 1, GamesMaximum: 1, GameScoring: game, GameTiebreakerScoring: game},
		}
	default:
		// Volleyball: best of 3 sets, each best of 5 games to 25, win by 2,
		// soft cap 27, 15-point tiebreaker game.
		game := GameRules{WinScore: 25, MaximumScore: 27, WinBy: 2}
		tiebreak := GameRules{WinScore: 15, MaximumScore: 17, WinBy: 2}
		set := SetRules{GamesWinAt: 3, GamesMaximum: 5, GameScoring: game, GameTiebreakerScoring: tiebreak}
		return MatchRules{
			SetsWinAt: 2, SetsMaximum: 3,
			SetScoring:           set,
			SetTiebreakerScoring: set,
		}
	}
}
