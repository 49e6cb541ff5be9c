package scoring

import (
	"errors"
	"testing"
	"time"
)

func TestNewGameRulesDefaults(t *testing.T) {
	r, err := NewGameRules(25, 0, 0)
	if err != nil {
		t.Fatalf("NewGameRules: %v", err)
	}
	if r.MaximumScore != 25 {
		t.Errorf("expected maximumScore to default to winScore 25, got %d", r.MaximumScore)
	}
	if r.WinBy != 1 {
		t.Errorf("expected winBy to default to 1, got %d", r.WinBy)
	}
}

func TestNewGameRulesRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name                        string
		winScore, maxScore, winBy int
	}{
		{"zero winScore", 0, 25, 2},
		{"negative winBy", 25, 27, -1},
		{"cap below winScore", 25, 20, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGameRules(tc.winScore, tc.maxScore, tc.winBy)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGameRulesWinner(t *testing.T) {
	r, err := NewGameRules(25, 27, 2)
	if err != nil {
		t.Fatalf("NewGameRules: %v", err)
	}

	cases := []struct {
		name     string
		us, them int
		winner   Team
		ok       bool
	}{
		{"below threshold", 24, 23, "", false},
		{"threshold with margin", 25, 23, TeamUs, true},
		{"threshold without margin", 25, 24, "", false},
		{"deuce continues", 26, 25, "", false},
		{"deuce resolved", 27, 25, TeamUs, true},
		{"them side", 23, 25, TeamThem, true},
		{"tie never wins", 25, 25, "", false},
		{"past soft cap without margin", 27, 26, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Game{Number: 1, ScoreUs: tc.us, ScoreThem: tc.them}
			w, ok := r.Winner(g)
			if ok != tc.ok || w != tc.winner {
				t.Errorf("Winner(%d-%d) = %q, %v; want %q, %v", tc.us, tc.them, w, ok, tc.winner, tc.ok)
			}
		})
	}
}

func TestGameRulesWinByOne(t *testing.T) {
	r, err := NewGameRules(15, 0, 1)
	if err != nil {
		t.Fatalf("NewGameRules: %v", err)
	}

	// First to winScore wins immediately, even from a tie at 14-14.
	g := &Game{Number: 1, ScoreUs: 15, ScoreThem: 14}
	if w, ok := r.Winner(g); !ok || w != TeamUs {
		t.Errorf("expected us to win 15-14 under winBy 1, got %q, %v", w, ok)
	}
}

func TestSetRulesDefaults(t *testing.T) {
	game := GameRules{WinScore: 25, MaximumScore: 25, WinBy: 2}
	r, err := NewSetRules(3, 0, false, game, nil)
	if err != nil {
		t.Fatalf("NewSetRules: %v", err)
	}
	if r.GamesMaximum != 5 {
		t.Errorf("expected gamesMaximum to default to 2*3-1 = 5, got %d", r.GamesMaximum)
	}
	if r.GameTiebreakerScoring != game {
		t.Errorf("expected tiebreaker to default to gameScoring, got %+v", r.GameTiebreakerScoring)
	}
}

func TestSetRulesWinnerAndProgression(t *testing.T) {
	game := GameRules{WinScore: 11, MaximumScore: 11, WinBy: 2}
	r, err := NewSetRules(2, 3, false, game, nil)
	if err != nil {
		t.Fatalf("NewSetRules: %v", err)
	}

	s := newSet(1, time.Now())
	wonGame := func(n int, winner Team) *Game {
		g := newGame(n, time.Now())
		if winner == TeamUs {
			g.ScoreUs, g.ScoreThem = 11, 5
		} else {
			g.ScoreUs, g.ScoreThem = 5, 11
		}
		ended := time.Now()
		g.EndedAt = &ended
		return g
	}

	s.Games = append(s.Games, wonGame(1, TeamUs))
	if _, ok := r.Winner(s); ok {
		t.Fatal("set should have no winner at 1-0")
	}
	if !r.CanPlayAnotherGame(s) {
		t.Fatal("another game should be allowed at 1-0")
	}

	s.Games = append(s.Games, wonGame(2, TeamUs))
	w, ok := r.Winner(s)
	if !ok || w != TeamUs {
		t.Fatalf("expected us to win the set at 2-0, got %q, %v", w, ok)
	}
	if r.CanPlayAnotherGame(s) {
		t.Error("no further game once the set is decided")
	}
}

func TestSetRulesPlayItOut(t *testing.T) {
	game := GameRules{WinScore: 11, MaximumScore: 11, WinBy: 1}
	r, err := NewSetRules(2, 3, true, game, nil)
	if err != nil {
		t.Fatalf("NewSetRules: %v", err)
	}

	s := newSet(1, time.Now())
	for n := 1; n <= 2; n++ {
		g := newGame(n, time.Now())
		g.ScoreUs, g.ScoreThem = 11, 3
		ended := time.Now()
		g.EndedAt = &ended
		s.Games = append(s.Games, g)
	}

	// Decided 2-0, but play-it-out allows the third game and no more.
	if !r.CanPlayAnotherGame(s) {
		t.Error("play-it-out should allow a third game after 2-0")
	}
	s.Games = append(s.Games, newGame(3, time.Now()))
	if r.CanPlayAnotherGame(s) {
		t.Error("gamesMaximum reached, no fourth game")
	}
}

func TestMatchRulesValidation(t *testing.T) {
	set := SetRules{GamesWinAt: 1, GamesMaximum: 1, GameScoring: GameRules{WinScore: 25, MaximumScore: 25, WinBy: 2}, GameTiebreakerScoring: GameRules{WinScore: 25, MaximumScore: 25, WinBy: 2}}

	if _, err := NewMatchRules(0, 0, false, set, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for setsWinAt 0, got %v", err)
	}

	bad := set
	bad.GameScoring.WinBy = 0
	if _, err := NewMatchRules(1, 1, false, bad, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected nested game rules to be validated, got %v", err)
	}
}

func TestDefaultRulesAreValid(t *testing.T) {
	for _, sport := range []Sport{SportVolleyball, SportSquash, SportUltimate} {
		if err := DefaultRules(sport).Validate(); err != nil {
			t.Errorf("DefaultRules(%s): %v", sport, err)
		}
	}
	if !DefaultRules(SportVolleyball).IsMultiSet() {
		t.Error("volleyball preset should be multi-set")
	}
	if DefaultRules(SportSquash).IsMultiSet() {
		t.Error("squash preset should be single-set")
	}
}
