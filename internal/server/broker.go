package server

import (
	"encoding/json"
	"sync"
)

// MatchEvent is the payload published to match subscribers.
type MatchEvent struct {
	Type       string `json:"type"`
	Team       string `json:"team,omitempty"`
	SetNumber  int    `json:"setNumber,omitempty"`
	GameNumber int    `json:"gameNumber,omitempty"`
	ScoreUs    int    `json:"scoreUs,omitempty"`
	ScoreThem  int    `json:"scoreThem,omitempty"`
	Streak     int    `json:"streak,omitempty"`
	Winner     string `json:"winner,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// Event types published over SSE and the websocket stream.
const (
	EventPointScored   = "point_scored"
	EventGameStarted   = "game_started"
	EventGameEnded     = "game_ended"
	EventSetEnded      = "set_ended"
	EventMatchEnded    = "match_ended"
	EventWarmupStarted = "warmup_started"
	EventWarmupEnded   = "warmup_ended"
)

// Broker is an in-process pub/sub for match events, keyed by match ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given match.
func (b *Broker) Subscribe(matchID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[matchID] == nil {
		b.subs[matchID] = make(map[chan []byte]struct{})
	}
	b.subs[matchID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the match's subscribers.
func (b *Broker) Unsubscribe(matchID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[matchID], ch)
	if len(b.subs[matchID]) == 0 {
		delete(b.subs, matchID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given match.
func (b *Broker) Publish(matchID string, event MatchEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[matchID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
