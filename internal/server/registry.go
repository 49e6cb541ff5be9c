package server

import (
	"context"
	"sync"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// liveMatch is the in-memory authority for one match. Its mutex serializes
// every mutation: a point can cascade into ending a game, a set, and leaving
// the match awaiting end, so the whole tree is guarded at once.
type liveMatch struct {
	mu    sync.Mutex
	id    string
	match *scoring.Match
}

// update applies fn under the match lock and, when fn succeeds, persists the
// entire mutated tree. The returned state is a snapshot taken while still
// holding the lock.
func (l *liveMatch) update(ctx context.Context, store Store, fn func(*scoring.Match) error) (MatchState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := fn(l.match); err != nil {
		return MatchState{}, err
	}
	if err := store.SaveMatch(ctx, l.id, l.match); err != nil {
		return MatchState{}, err
	}
	return matchState(l.id, l.match), nil
}

func (l *liveMatch) state() MatchState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return matchState(l.id, l.match)
}

// Registry hands out the single live instance per match, loading it from the
// store on first access.
type Registry struct {
	mu    sync.RWMutex
	store Store
	live  map[string]*liveMatch
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
		live:  make(map[string]*liveMatch),
	}
}

func (r *Registry) Get(ctx context.Context, id string) (*liveMatch, error) {
	r.mu.RLock()
	l, ok := r.live[id]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if l, ok := r.live[id]; ok {
		return l, nil
	}

	m, err := r.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	l = &liveMatch{id: id, match: m}
	r.live[id] = l
	return l, nil
}

// Put registers a freshly created match and returns its live wrapper.
func (r *Registry) Put(id string, m *scoring.Match) *liveMatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := &liveMatch{id: id, match: m}
	r.live[id] = l
	return l
}

// Forget drops the live instance, e.g. after the match row is deleted.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}
