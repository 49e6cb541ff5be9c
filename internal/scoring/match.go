package scoring

import (
	"fmt"
	"strings"
	"time"
)

// Match is the root of the scoring tree and the central state machine. It
// owns its Sets (which own their Games), delegates winner checks to the rule
// objects, and advances the game/set hierarchy as points come in.
//
// A match is not safe for concurrent use; callers serialize access behind a
// single mutex, matching the one-writer model the invariants assume.
type Match struct {
	Sport       Sport       `json:"sport"`
	Environment Environment `json:"environment"`
	Scoring     MatchRules  `json:"scoring"`
	Sets        []*Set      `json:"sets"`
	Warmup      *Warmup     `json:"warmup,omitempty"`

	// TemplateID is a weak back-reference to the template this match was
	// created from, for display only. Empty for directly constructed matches.
	TemplateID string `json:"templateId,omitempty"`

	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`

	// now is the clock; tests override it for deterministic timestamps.
	now func() time.Time
}

// NewMatch constructs a match with validated rules. The match starts with no
// sets; the first StartGame call creates set 1 and game 1.
func NewMatch(sport Sport, environment Environment, scoring MatchRules) (*Match, error) {
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &Match{
		Sport:       sport,
		Environment: environment,
		Scoring:     scoring,
		StartedAt:   time.Now(),
	}, nil
}

func (m *Match) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *Match) HasEnded() bool {
	return m.EndedAt != nil
}

// Duration is the elapsed time of an ended match; zero while in progress.
func (m *Match) Duration() time.Duration {
	if m.EndedAt == nil {
		return 0
	}
	return m.EndedAt.Sub(m.StartedAt)
}

// LatestSet returns the highest-numbered set, or nil before the first set.
func (m *Match) LatestSet() *Set {
	if len(m.Sets) == 0 {
		return nil
	}
	return m.Sets[len(m.Sets)-1]
}

// LatestGame returns the latest set's latest game, or nil.
func (m *Match) LatestGame() *Game {
	if s := m.LatestSet(); s != nil {
		return s.LatestGame()
	}
	return nil
}

// SetsFor counts completed sets won by team.
func (m *Match) SetsFor(team Team) int {
	n := 0
	for _, s := range m.Sets {
		if w, ok := s.Winner(); ok && w == team {
			n++
		}
	}
	return n
}

// Winner returns the side with more won sets, defined only once the match
// has ended. For single-set formats this reduces to the winner of the one
// set, which in turn is decided by game count.
func (m *Match) Winner() (Team, bool) {
	if !m.HasEnded() {
		return "", false
	}
	us, them := m.SetsFor(TeamUs), m.SetsFor(TeamThem)
	switch {
	case us > them:
		return TeamUs, true
	case them > us:
		return TeamThem, true
	}
	return "", false
}

func (m *Match) HasWinner() bool {
	_, ok := m.Winner()
	return ok
}

func (m *Match) IsMultiSet() bool {
	return m.Scoring.IsMultiSet()
}

// HasMoreGames reports whether any further game may be played: another game
// in the active set, or another set in the match.
func (m *Match) HasMoreGames() bool {
	if m.HasEnded() {
		return false
	}
	set := m.LatestSet()
	if set == nil {
		return true
	}
	return m.Scoring.SetScoring.CanPlayAnotherGame(set) || m.Scoring.CanPlayAnotherSet(m)
}

// ScoreSummary is a human-readable recap: per-set game counts for multi-set
// formats ("2-0, 1-2"), per-game point totals otherwise ("25-23, 25-27").
func (m *Match) ScoreSummary() string {
	if m.IsMultiSet() {
		parts := make([]string, 0, len(m.Sets))
		for _, s := range m.Sets {
			parts = append(parts, fmt.Sprintf("%d-%d", s.GamesFor(TeamUs), s.GamesFor(TeamThem)))
		}
		return strings.Join(parts, ", ")
	}
	set := m.LatestSet()
	if set == nil {
		return ""
	}
	parts := make([]string, 0, len(set.Games))
	for _, g := range set.Games {
		parts = append(parts, fmt.Sprintf("%d-%d", g.ScoreUs, g.ScoreThem))
	}
	return strings.Join(parts, ", ")
}

// StartWarmup opens the warmup phase. Legal only before any set exists;
// idempotent when a warmup is already present.
func (m *Match) StartWarmup() error {
	if m.HasEnded() {
		return fmt.Errorf("%w: match has ended", ErrInvalidTransition)
	}
	if len(m.Sets) > 0 {
		return fmt.Errorf("%w: match already has a set in play", ErrInvalidTransition)
	}
	if m.Warmup != nil {
		return nil
	}
	m.Warmup = &Warmup{StartedAt: m.clock()}
	return nil
}

// Score records one point for team in the active game. When the point decides
// the game under the game rules, the game is stamped ended; when no further
// game may be played in the set, the set is stamped ended too. The match is
// never ended by this path — that is an explicit End call, so the caller can
// show the completed set before progressing.
func (m *Match) Score(team Team) error {
	if !team.Valid() {
		return fmt.Errorf("unknown team %q", team)
	}
	if m.HasEnded() {
		return fmt.Errorf("%w: match has ended", ErrInvalidTransition)
	}
	set := m.LatestSet()
	if set == nil || set.HasEnded() {
		return fmt.Errorf("%w: no active set", ErrInvalidTransition)
	}
	game := set.LatestGame()
	if game == nil || game.HasEnded() {
		return fmt.Errorf("%w: no active game", ErrInvalidTransition)
	}

	game.score(team, m.clock())

	if m.Scoring.SetScoring.GameScoring.HasWinner(game) {
		at := m.clock()
		game.EndedAt = &at

		if !m.Scoring.SetScoring.CanPlayAnotherGame(set) {
			set.EndedAt = &at
		}
	}
	return nil
}

// StartGame advances the hierarchy: it ends an active warmup, creates the
// first set and game when none exist, starts the next game in the active set
// when the set rules allow one, and otherwise closes the set and opens the
// next set — unless the match rules say the match is decided and not played
// out, in which case the match is left awaiting an explicit End.
func (m *Match) StartGame() error {
	if m.HasEnded() {
		return fmt.Errorf("%w: match has ended", ErrInvalidTransition)
	}

	now := m.clock()

	if m.Warmup != nil {
		m.Warmup.endAt(now)
	}

	if len(m.Sets) == 0 {
		m.addSet(now)
	}

	set := m.LatestSet()
	game := set.LatestGame()
	if game == nil {
		set.startGame(now)
		return nil
	}

	setClosedNow := false
	if !set.HasEnded() {
		// Should already be stamped by Score; close it here if the caller is
		// progressing past a game that never reached its win condition.
		if !game.HasEnded() {
			game.EndedAt = &now
		}

		if m.Scoring.SetScoring.CanPlayAnotherGame(set) {
			set.startGame(now)
			return nil
		}

		set.EndedAt = &now
		setClosedNow = true
	}

	if !m.Scoring.CanPlayAnotherSet(m) {
		if setClosedNow {
			// Decided. The match stays open until End is called explicitly.
			return nil
		}
		return fmt.Errorf("%w: match is awaiting end", ErrInvalidTransition)
	}

	next := m.addSet(now)
	next.startGame(now)
	return nil
}

// End closes the match, stamping any still-open game and set with the same
// timestamp, child before parent. Idempotent.
func (m *Match) End() error {
	if m.HasEnded() {
		return nil
	}

	now := m.clock()

	if w := m.Warmup; w != nil {
		w.endAt(now)
	}
	if g := m.LatestGame(); g != nil && !g.HasEnded() {
		g.EndedAt = &now
	}
	if s := m.LatestSet(); s != nil && !s.HasEnded() {
		s.EndedAt = &now
	}
	m.EndedAt = &now
	return nil
}

func (m *Match) addSet(at time.Time) *Set {
	number := 1
	if s := m.LatestSet(); s != nil {
		number = s.Number + 1
	}
	s := newSet(number, at)
	m.Sets = append(m.Sets, s)
	return s
}
