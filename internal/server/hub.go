package server

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/protocol"
)

// Hub is the global, concurrency-safe session set. Every registration
// and deregistration rebroadcasts the online count; one stuck or broken
// connection never blocks delivery to the rest.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*ClientSession
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*ClientSession),
		log:      log.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) Add(cs *ClientSession) {
	h.mu.Lock()
	h.sessions[cs.ID()] = cs
	n := len(h.sessions)
	h.mu.Unlock()

	h.log.Info().Str("session", cs.ID()).Str("remote", cs.conn.RemoteAddr()).Int("online", n).Msg("session registered")
	h.BroadcastAll(protocol.Users(n))
}

func (h *Hub) Remove(sessionID string) {
	h.mu.Lock()
	delete(h.sessions, sessionID)
	n := len(h.sessions)
	h.mu.Unlock()

	h.log.Info().Str("session", sessionID).Int("online", n).Msg("session deregistered")
	h.BroadcastAll(protocol.Users(n))
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// BroadcastAll delivers a line to every connected session. Each Send
// isolates its own failures.
func (h *Hub) BroadcastAll(line string) {
	h.mu.RLock()
	targets := make([]*ClientSession, 0, len(h.sessions))
	for _, cs := range h.sessions {
		targets = append(targets, cs)
	}
	h.mu.RUnlock()

	for _, cs := range targets {
		cs.Send(line)
	}
}
