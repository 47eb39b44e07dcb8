package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
	"github.com/HONGMOEJI/acid-rain/internal/protocol"
)

const (
	// MinCapacity and MaxCapacity bound room sizes.
	MinCapacity = 2
	MaxCapacity = 4
)

// Registry is the authority over room lifecycle and membership. Every
// dependency is injected; responses go straight back through the
// requesting Client and fan-outs through the room or the global
// Broadcaster.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	nextID int

	hub    Broadcaster
	words  WordProvider
	boards ScoreRecorder
	sched  *Scheduler
	log    zerolog.Logger

	now func() time.Time
}

func NewRegistry(hub Broadcaster, words WordProvider, boards ScoreRecorder, sched *Scheduler, log zerolog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		nextID: 1,
		hub:    hub,
		words:  words,
		boards: boards,
		sched:  sched,
		log:    log.With().Str("component", "registry").Logger(),
	}
}

// reconcileLocked folds a finished session back into the room so the
// host can start another match. Sessions detach themselves from the
// scheduler; the registry only observes the outcome.
func (g *Registry) reconcileLocked(room *Room) {
	if room.session != nil && room.session.Finished() {
		room.session = nil
		room.started = false
	}
}

// CreateRoom validates the parameters, allocates a room with the creator
// as sole member and host, and rebroadcasts the room list. Returns the
// new room id and whether creation succeeded.
func (g *Registry) CreateRoom(c Client, name, password, modeStr, diffStr string, capacity int) (string, bool) {
	if name == "" {
		c.Send(protocol.CreateRoomResponse(false, "room name is required", nil))
		return "", false
	}
	if capacity < MinCapacity || capacity > MaxCapacity {
		c.Send(protocol.CreateRoomResponse(false,
			fmt.Sprintf("capacity must be between %d and %d", MinCapacity, MaxCapacity), nil))
		return "", false
	}
	mode, err := domain.ParseMode(modeStr)
	if err != nil {
		c.Send(protocol.CreateRoomResponse(false, "invalid game mode", nil))
		return "", false
	}
	diff, err := domain.ParseDifficulty(diffStr)
	if err != nil {
		c.Send(protocol.CreateRoomResponse(false, "invalid difficulty", nil))
		return "", false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := fmt.Sprintf("R%d", g.nextID)
	g.nextID++

	room := &Room{
		id:       id,
		name:     name,
		password: password,
		host:     c.Username(),
		mode:     mode,
		diff:     diff,
		capacity: capacity,
		members:  []Client{c},
	}
	g.rooms[id] = room

	info := room.Info()
	c.Send(protocol.CreateRoomResponse(true, "room created", &info))
	g.broadcastRoomListLocked()

	g.log.Info().Str("room", id).Str("host", room.host).Str("name", name).Msg("room created")
	return id, true
}

// JoinRoom adds a member after checking existence, capacity, match
// status and password. Membership is unchanged on any rejection.
func (g *Registry) JoinRoom(c Client, roomID, password string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		c.Send(protocol.JoinRoomResponse(false, "no such room", nil))
		return false
	}
	g.reconcileLocked(room)

	if room.isFull() {
		c.Send(protocol.JoinRoomResponse(false, "room is full", nil))
		return false
	}
	if room.started {
		c.Send(protocol.JoinRoomResponse(false, "match already started", nil))
		return false
	}
	if !room.passwordOK(password) {
		c.Send(protocol.JoinRoomResponse(false, "wrong password", nil))
		return false
	}

	room.members = append(room.members, c)

	info := room.Info()
	c.Send(protocol.JoinRoomResponse(true, "joined", &info))
	room.broadcast(protocol.PlayerUpdate(roomID, room.memberNames()))
	g.broadcastRoomListLocked()

	g.log.Info().Str("room", roomID).Str("player", c.Username()).Msg("player joined room")
	return true
}

// LeaveRoom removes a member. Leaving mid-match forfeits first; an
// emptied room is destroyed on the spot; a departing host hands off to
// the earliest-joined remaining member.
func (g *Registry) LeaveRoom(c Client, roomID string) {
	g.mu.Lock()
	room, ok := g.rooms[roomID]
	if !ok {
		g.mu.Unlock()
		return
	}
	if _, isMember := room.member(c.ID()); !isMember {
		g.mu.Unlock()
		return
	}
	var sess *Session
	if room.session != nil && !room.session.Finished() {
		sess = room.session
	}
	g.mu.Unlock()

	if sess != nil {
		sess.HandleLeave(c.Username())
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok = g.rooms[roomID]
	if !ok {
		return
	}
	g.reconcileLocked(room)

	wasHost := room.host == c.Username()
	room.removeMember(c.ID())

	if len(room.members) == 0 {
		if room.session != nil {
			room.session.Stop()
		}
		delete(g.rooms, roomID)
		g.hub.BroadcastAll(protocol.RoomClosed(roomID, "all players left"))
		g.broadcastRoomListLocked()
		g.log.Info().Str("room", roomID).Msg("room destroyed")
		return
	}

	if wasHost {
		room.host = room.members[0].Username()
		room.broadcast(protocol.HostLeft(roomID, "host left the room"))
		room.broadcast(protocol.NewHost(roomID, room.host))
		g.log.Info().Str("room", roomID).Str("host", room.host).Msg("host reassigned")
	}

	room.broadcast(protocol.PlayerUpdate(roomID, room.memberNames()))
	g.broadcastRoomListLocked()
}

// UpdateSettings changes the room's mode or difficulty. Host only, and
// only before the match starts.
func (g *Registry) UpdateSettings(c Client, roomID, field, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		c.Send(protocol.Error("no such room"))
		return
	}
	g.reconcileLocked(room)

	if room.host != c.Username() {
		c.Send(protocol.Error("only the host can change settings"))
		return
	}
	if room.started {
		c.Send(protocol.Error("settings are locked once the match starts"))
		return
	}

	switch field {
	case "MODE", "mode":
		mode, err := domain.ParseMode(value)
		if err != nil {
			c.Send(protocol.Error("invalid game mode"))
			return
		}
		room.mode = mode
	case "DIFFICULTY", "difficulty":
		diff, err := domain.ParseDifficulty(value)
		if err != nil {
			c.Send(protocol.Error("invalid difficulty"))
			return
		}
		room.diff = diff
	default:
		c.Send(protocol.Error(fmt.Sprintf("unknown setting %q", field)))
		return
	}

	room.broadcast(protocol.SettingsUpdate(roomID, room.mode, room.diff))
	g.broadcastRoomListLocked()
}

// StartGame builds and starts the room's session. Host only, and only
// when the room is exactly at capacity with no match running.
func (g *Registry) StartGame(c Client, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		c.Send(protocol.Error("no such room"))
		return
	}
	g.reconcileLocked(room)

	if room.host != c.Username() {
		c.Send(protocol.Error("only the host can start the game"))
		return
	}
	if room.started {
		c.Send(protocol.Error("match already started"))
		return
	}
	if len(room.members) != room.capacity {
		c.Send(protocol.Error("room is not full yet"))
		return
	}

	sess := NewSession(
		roomID, room.mode, room.diff, room.members,
		g.words, g.boards,
		g.sched.Remove,
		g.log,
	)
	room.session = sess
	room.started = true

	g.sched.Add(roomID, sess)
	sess.Start(g.clock())
	g.broadcastRoomListLocked()
}

// Chat relays a room-scoped chat line to the room's members.
func (g *Registry) Chat(c Client, roomID, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		return
	}
	if _, isMember := room.member(c.ID()); !isMember {
		return
	}
	room.broadcast(protocol.ChatMessage(roomID, c.Username(), text))
}

// SendRoomList answers one client's room-list query.
func (g *Registry) SendRoomList(c Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.Send(protocol.RoomListResponse(g.roomInfosLocked()))
}

// WordInput forwards typed input to the room's running session.
func (g *Registry) WordInput(c Client, roomID, text string) {
	if sess := g.activeSession(c, roomID); sess != nil {
		sess.HandleInput(c.Username(), text)
	}
}

// WordMissed forwards a missed-word report to the room's session.
func (g *Registry) WordMissed(c Client, roomID, text string) {
	if sess := g.activeSession(c, roomID); sess != nil {
		sess.HandleMiss(text)
	}
}

// LeaveGame forfeits the match for the player without leaving the room.
func (g *Registry) LeaveGame(c Client, roomID string) {
	if sess := g.activeSession(c, roomID); sess != nil {
		sess.HandleLeave(c.Username())
	}
}

// activeSession fetches the running session, if any, without holding
// the registry lock across session calls. Game actions are scoped to
// room members; anyone else gets nothing back.
func (g *Registry) activeSession(c Client, roomID string) *Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok || room.session == nil || room.session.Finished() {
		return nil
	}
	if _, isMember := room.member(c.ID()); !isMember {
		return nil
	}
	return room.session
}

// RoomCount reports how many rooms currently exist.
func (g *Registry) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

func (g *Registry) roomInfosLocked() []domain.RoomInfo {
	infos := make([]domain.RoomInfo, 0, len(g.rooms))
	for _, room := range g.rooms {
		infos = append(infos, room.Info())
	}
	// R2 before R10: order by id length, then lexicographically.
	sort.Slice(infos, func(i, j int) bool {
		if len(infos[i].ID) != len(infos[j].ID) {
			return len(infos[i].ID) < len(infos[j].ID)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

func (g *Registry) broadcastRoomListLocked() {
	g.hub.BroadcastAll(protocol.RoomListResponse(g.roomInfosLocked()))
}

func (g *Registry) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}
