package game

import (
	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// Room is a matchmaking container: membership, host identity, settings
// and at most one running session. All fields are guarded by the
// registry's mutex; members keep their join order so host reassignment
// is deterministic (earliest joined takes over).
type Room struct {
	id       string
	name     string
	password string
	host     string
	mode     domain.Mode
	diff     domain.Difficulty
	capacity int
	members  []Client
	started  bool
	session  *Session
}

func (r *Room) Info() domain.RoomInfo {
	return domain.RoomInfo{
		ID:         r.id,
		Name:       r.name,
		Current:    len(r.members),
		Max:        r.capacity,
		Mode:       r.mode,
		Difficulty: r.diff,
		Host:       r.host,
	}
}

func (r *Room) memberNames() []string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.Username()
	}
	return names
}

func (r *Room) member(clientID string) (Client, bool) {
	for _, m := range r.members {
		if m.ID() == clientID {
			return m, true
		}
	}
	return nil, false
}

func (r *Room) removeMember(clientID string) {
	for i, m := range r.members {
		if m.ID() == clientID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *Room) isFull() bool {
	return len(r.members) >= r.capacity
}

func (r *Room) passwordOK(given string) bool {
	return r.password == "" || r.password == given
}

// broadcast fans a line out to the room's current members only.
func (r *Room) broadcast(line string) {
	for _, m := range r.members {
		m.Send(line)
	}
}
