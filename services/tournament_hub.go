// services/tournament_hub.go - live leaderboard fan-out per tournament
package services

import (
	"log"
	"sync"
)

// Send channel buffer size per subscriber.
const liveBufferSize = 16

type LiveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Subscriber receives the messages of one tournament until it is removed.
type Subscriber struct {
	TournamentID string
	send         chan LiveMessage
}

func (s *Subscriber) Messages() <-chan LiveMessage {
	return s.send
}

// LiveHub keeps the websocket subscribers of every tournament.
type LiveHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewLiveHub() *LiveHub {
	return &LiveHub{rooms: make(map[string]map[*Subscriber]struct{})}
}

func (h *LiveHub) Subscribe(tournamentID string) *Subscriber {
	sub := &Subscriber{TournamentID: tournamentID, send: make(chan LiveMessage, liveBufferSize)}
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[tournamentID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[tournamentID] = room
	}
	room[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is safe.
func (h *LiveHub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[sub.TournamentID]
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	close(sub.send)
	if len(room) == 0 {
		delete(h.rooms, sub.TournamentID)
	}
}

// Subscribers counts the live connections of a tournament.
func (h *LiveHub) Subscribers(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// Broadcast never blocks: a subscriber with a full buffer misses the message.
func (h *LiveHub) Broadcast(tournamentID, msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg := LiveMessage{Type: msgType, Payload: payload}
	for sub := range h.rooms[tournamentID] {
		select {
		case sub.send <- msg:
		default:
			log.Printf("⚠️ Send buffer full for tournament %s subscriber, dropping %s", tournamentID, msgType)
		}
	}
}
