package scoring

import "time"

// Warmup is the optional pre-match phase that delays creation of the first
// game. Created at most once per match, ended exactly once.
type Warmup struct {
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

func (w *Warmup) HasEnded() bool {
	return w.EndedAt != nil
}

// End closes the warmup. Idempotent: the original timestamp is kept on
// repeated calls.
func (w *Warmup) End() {
	w.endAt(time.Now())
}

func (w *Warmup) endAt(at time.Time) {
	if w.HasEnded() {
		return
	}
	w.EndedAt = &at
}
