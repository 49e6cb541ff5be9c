package scoring

import (
	"errors"
	"testing"
	"time"
)

func TestGameScoreTotalsMatchLog(t *testing.T) {
	g := newGame(1, time.Now())

	for i := 0; i < 5; i++ {
		g.score(TeamUs, time.Now())
	}
	for i := 0; i < 3; i++ {
		g.score(TeamThem, time.Now())
	}

	if g.ScoreFor(TeamUs) != 5 {
		t.Errorf("expected us at 5, got %d", g.ScoreFor(TeamUs))
	}
	if g.ScoreFor(TeamThem) != 3 {
		t.Errorf("expected them at 3, got %d", g.ScoreFor(TeamThem))
	}
	if len(g.Scores) != 8 {
		t.Errorf("expected 8 log entries, got %d", len(g.Scores))
	}

	// Totals are a projection of the log.
	sumUs, sumThem := 0, 0
	for _, e := range g.Scores {
		if e.Team == TeamUs {
			sumUs += e.Change
		} else {
			sumThem += e.Change
		}
	}
	if sumUs != g.ScoreUs || sumThem != g.ScoreThem {
		t.Errorf("log sums %d-%d disagree with totals %d-%d", sumUs, sumThem, g.ScoreUs, g.ScoreThem)
	}
}

func TestGameScoreStreak(t *testing.T) {
	g := newGame(1, time.Now())

	g.score(TeamUs, time.Now())
	g.score(TeamUs, time.Now())
	g.score(TeamUs, time.Now())

	if got := g.ScoreStreakFor(TeamUs); got != 3 {
		t.Errorf("expected streak of 3, got %d", got)
	}
	if got := g.ScoreStreakFor(TeamThem); got != 0 {
		t.Errorf("expected zero streak for them, got %d", got)
	}

	// Opponent point resets the streak.
	g.score(TeamThem, time.Now())
	if got := g.ScoreStreakFor(TeamUs); got != 0 {
		t.Errorf("expected streak reset after opponent point, got %d", got)
	}
	if got := g.ScoreStreakFor(TeamThem); got != 1 {
		t.Errorf("expected them streak of 1, got %d", got)
	}
}

func TestGameScoreToCorrection(t *testing.T) {
	g := newGame(1, time.Now())
	g.score(TeamUs, time.Now())
	g.score(TeamUs, time.Now())

	// Correct a misstroke downward.
	if err := g.ScoreTo(TeamUs, 1, time.Now()); err != nil {
		t.Fatalf("ScoreTo: %v", err)
	}
	if g.ScoreUs != 1 {
		t.Errorf("expected total 1 after correction, got %d", g.ScoreUs)
	}
	last := g.Scores[len(g.Scores)-1]
	if last.Change != -1 || last.Total != 1 {
		t.Errorf("expected correction event change=-1 total=1, got change=%d total=%d", last.Change, last.Total)
	}
}

func TestGameScoreToRejectedAfterEnd(t *testing.T) {
	g := newGame(1, time.Now())
	ended := time.Now()
	g.EndedAt = &ended

	err := g.ScoreTo(TeamUs, 1, time.Now())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestGameWinnerOnlyOnceEnded(t *testing.T) {
	g := newGame(1, time.Now())
	g.ScoreUs, g.ScoreThem = 25, 20

	if _, ok := g.Winner(); ok {
		t.Error("winner undefined while the game is open")
	}
	ended := time.Now()
	g.EndedAt = &ended
	if w, ok := g.Winner(); !ok || w != TeamUs {
		t.Errorf("expected us as winner, got %q, %v", w, ok)
	}
}

func TestGameNextServe(t *testing.T) {
	g := newGame(1, time.Now())

	if _, ok := g.NextServe(); ok {
		t.Error("no serve known before any point or initial serve")
	}

	g.InitialServe = TeamThem
	if w, ok := g.NextServe(); !ok || w != TeamThem {
		t.Errorf("expected initial serve by them, got %q, %v", w, ok)
	}

	g.score(TeamUs, time.Now())
	if w, ok := g.NextServe(); !ok || w != TeamUs {
		t.Errorf("expected serve to follow last point, got %q, %v", w, ok)
	}

	ended := time.Now()
	g.EndedAt = &ended
	if _, ok := g.NextServe(); ok {
		t.Error("no next serve once the game has ended")
	}
}
