package scoring

import "time"

// Template is a durable, user-edited match preset. Creating a match copies
// the template's rules by value: later edits never reach already-created
// matches.
type Template struct {
	ID           string        `json:"id"`
	Sport        Sport         `json:"sport"`
	Name         string        `json:"name"`
	Color        TemplateColor `json:"color"`
	Environment  Environment   `json:"environment"`
	Scoring      MatchRules    `json:"scoring"`
	Warmup       WarmupRule    `json:"warmup"`
	StartWorkout bool          `json:"startWorkout"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastUsedAt   *time.Time    `json:"lastUsedAt,omitempty"`
}

// NewTemplate builds a template with validated scoring rules and the usual
// defaults: green, indoor, no warmup, workout tracking on.
func NewTemplate(sport Sport, name string, scoring MatchRules) (*Template, error) {
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &Template{
		Sport:        sport,
		Name:         name,
		Color:        ColorGreen,
		Environment:  EnvironmentIndoor,
		Scoring:      scoring,
		Warmup:       WarmupNone,
		StartWorkout: true,
		CreatedAt:    time.Now(),
	}, nil
}

// CreateMatch instantiates a match from the template, snapshot-copying its
// rules. When markAsUsed is set, LastUsedAt is updated and the match keeps a
// back-reference to the template. A template with an open warmup rule starts
// its matches in the warmup phase.
func (t *Template) CreateMatch(markAsUsed bool) *Match {
	now := time.Now()

	m := &Match{
		Sport:       t.Sport,
		Environment: t.Environment,
		Scoring:     t.Scoring,
		StartedAt:   now,
	}

	if markAsUsed {
		t.LastUsedAt = &now
		m.TemplateID = t.ID
	}

	if t.Warmup == WarmupOpen {
		m.Warmup = &Warmup{StartedAt: now}
	}

	return m
}
