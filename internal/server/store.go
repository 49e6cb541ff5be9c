package server

import (
	"context"
	"errors"
	"time"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

var ErrNotFound = errors.New("not found")

type adminSession struct {
	AdminID string
	Email   string
}

// MatchSummary is the list-view projection of a match, read straight off the
// matches table without loading the set/game tree.
type MatchSummary struct {
	ID          string              `json:"id"`
	Sport       scoring.Sport       `json:"sport"`
	Environment scoring.Environment `json:"environment"`
	TemplateID  string              `json:"templateId,omitempty"`
	StartedAt   time.Time           `json:"startedAt"`
	EndedAt     *time.Time          `json:"endedAt,omitempty"`
}

// Store is the persistence collaborator. After every mutating engine call the
// server durably persists the entire mutated object graph (match + sets +
// games + score events) keyed by the match ID.
type Store interface {
	CreateMatch(ctx context.Context, m *scoring.Match) (string, error)
	GetMatch(ctx context.Context, id string) (*scoring.Match, error)
	SaveMatch(ctx context.Context, id string, m *scoring.Match) error
	DeleteMatch(ctx context.Context, id string) error
	ListMatches(ctx context.Context) ([]MatchSummary, error)

	ListTemplates(ctx context.Context) ([]*scoring.Template, error)
	GetTemplate(ctx context.Context, id string) (*scoring.Template, error)
	CreateTemplate(ctx context.Context, t *scoring.Template) (string, error)
	UpdateTemplate(ctx context.Context, t *scoring.Template) error
	DeleteTemplate(ctx context.Context, id string) error
	TouchTemplate(ctx context.Context, id string, usedAt time.Time) error
	CountTemplates(ctx context.Context) (int, error)

	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdmin(ctx context.Context, email, passwordHash string) error
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
}
