package server

import (
	"encoding/json"
	"sync"
)

const (
	EventState  = "state"
	EventAnswer = "answer"
	EventRefuel = "refuel"
)

// Event is pushed to a team's live connections when its state changes.
type Event struct {
	Type      string  `json:"type"`
	Stage     int     `json:"stage"`
	Phase     int     `json:"phase"`
	Health    float64 `json:"health"`
	Completed bool    `json:"completed,omitempty"`
}

// Broker is an in-process pub/sub for team events, keyed by team code.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the team.
func (b *Broker) Subscribe(teamID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[teamID] == nil {
		b.subs[teamID] = make(map[chan []byte]struct{})
	}
	b.subs[teamID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(teamID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[teamID], ch)
	if len(b.subs[teamID]) == 0 {
		delete(b.subs, teamID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the team. Slow subscribers
// miss events rather than block the publisher.
func (b *Broker) Publish(teamID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[teamID] {
		select {
		case ch <- data:
		default:
		}
	}
	b.mu.RUnlock()
}
