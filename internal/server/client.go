package server

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
	"github.com/HONGMOEJI/acid-rain/internal/game"
	"github.com/HONGMOEJI/acid-rain/internal/protocol"
)

// LeaderboardReader is the read-only slice of the leaderboard store the
// session layer needs for GAME_ACTION queries.
type LeaderboardReader interface {
	TopEntries(mode domain.Mode, diff domain.Difficulty, limit int) []domain.LeaderboardEntry
	UserEntries(username string) []domain.LeaderboardEntry
}

const topScoresLimit = 10

// ClientSession services one connection: it decodes protocol lines,
// dispatches them, and delivers outbound events. Malformed input is
// logged and skipped; only I/O failure or an explicit logout ends the
// session, and both run the same cleanup path.
type ClientSession struct {
	id       string
	conn     Conn
	hub      *Hub
	registry *game.Registry
	boards   LeaderboardReader
	limiter  *rate.Limiter
	log      zerolog.Logger

	mu       sync.Mutex
	username string
	roomID   string

	sendMu sync.Mutex
	closed atomic.Bool
}

func NewClientSession(conn Conn, hub *Hub, registry *game.Registry, boards LeaderboardReader, log zerolog.Logger) *ClientSession {
	id := uuid.NewString()
	return &ClientSession{
		id:       id,
		conn:     conn,
		hub:      hub,
		registry: registry,
		boards:   boards,
		// Generous for a typing game: inputs arrive as fast as people
		// type, but command floods get dropped.
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		log:     log.With().Str("session", id).Logger(),
	}
}

func (cs *ClientSession) ID() string { return cs.id }

func (cs *ClientSession) Username() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.username
}

func (cs *ClientSession) currentRoom() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.roomID
}

func (cs *ClientSession) setRoom(roomID string) {
	cs.mu.Lock()
	cs.roomID = roomID
	cs.mu.Unlock()
}

// Send delivers one event line. A write failure closes this connection
// and is never propagated: delivery to other sessions is unaffected.
func (cs *ClientSession) Send(line string) {
	if cs.closed.Load() {
		return
	}

	cs.sendMu.Lock()
	defer cs.sendMu.Unlock()

	if err := cs.conn.WriteLine(line); err != nil {
		if cs.closed.CompareAndSwap(false, true) {
			cs.log.Warn().Err(err).Msg("send failed, dropping connection")
			cs.conn.Close()
		}
	}
}

// Run is the connection's read loop. It returns when the peer goes
// away or logs out; cleanup always runs exactly once.
func (cs *ClientSession) Run() {
	defer cs.cleanup()

	for {
		line, err := cs.conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				cs.log.Debug().Err(err).Msg("read loop ended")
			}
			return
		}
		if line == "" {
			continue
		}
		if !cs.limiter.Allow() {
			cs.log.Warn().Msg("command rate limit exceeded, dropping line")
			continue
		}

		cmd, err := protocol.Parse(line)
		if err != nil {
			cs.log.Warn().Err(err).Str("line", line).Msg("skipping malformed command")
			continue
		}

		if cs.dispatch(cmd) {
			return
		}
	}
}

// dispatch handles one decoded command; it reports true when the
// session should terminate.
func (cs *ClientSession) dispatch(cmd protocol.Command) bool {
	switch cmd.(type) {
	case protocol.Login, protocol.Logout:
	default:
		if cs.Username() == "" {
			cs.Send(protocol.Error("login required"))
			return false
		}
	}

	switch c := cmd.(type) {
	case protocol.Login:
		// The username keys host checks and match state, so a session
		// keeps its first identity for life.
		if cs.Username() != "" {
			cs.Send(protocol.Error("already logged in"))
			return false
		}
		cs.mu.Lock()
		cs.username = c.Name
		cs.mu.Unlock()
		cs.log.Info().Str("username", c.Name).Msg("logged in")

	case protocol.CreateRoom:
		if cs.currentRoom() != "" {
			cs.Send(protocol.CreateRoomResponse(false, "leave your current room first", nil))
			return false
		}
		if id, ok := cs.registry.CreateRoom(cs, c.Name, c.Password, c.Mode, c.Difficulty, c.Capacity); ok {
			cs.setRoom(id)
		}

	case protocol.JoinRoom:
		if cs.currentRoom() != "" {
			cs.Send(protocol.JoinRoomResponse(false, "leave your current room first", nil))
			return false
		}
		if cs.registry.JoinRoom(cs, c.RoomID, c.Password) {
			cs.setRoom(c.RoomID)
		}

	case protocol.LeaveRoom:
		cs.registry.LeaveRoom(cs, c.RoomID)
		if cs.currentRoom() == c.RoomID {
			cs.setRoom("")
		}

	case protocol.Chat:
		cs.registry.Chat(cs, c.RoomID, c.Text)

	case protocol.UpdateSettings:
		cs.registry.UpdateSettings(cs, c.RoomID, c.Field, c.Value)

	case protocol.StartGame:
		cs.registry.StartGame(cs, c.RoomID)

	case protocol.RoomList:
		cs.registry.SendRoomList(cs)

	case protocol.WordInput:
		cs.registry.WordInput(cs, c.RoomID, c.Text)

	case protocol.WordMissed:
		cs.registry.WordMissed(cs, c.RoomID, c.Text)

	case protocol.LeaveGame:
		cs.registry.LeaveGame(cs, c.RoomID)

	case protocol.LeaderboardTop:
		cs.sendTopScores(c.Mode, c.Difficulty)

	case protocol.LeaderboardMine:
		cs.Send(protocol.UserRecords(cs.boards.UserEntries(cs.Username())))

	case protocol.Logout:
		cs.log.Info().Msg("logout requested")
		return true
	}

	return false
}

func (cs *ClientSession) sendTopScores(modeStr, diffStr string) {
	mode, err := domain.ParseMode(modeStr)
	if err != nil {
		cs.Send(protocol.Error("invalid game mode"))
		return
	}
	diff, err := domain.ParseDifficulty(diffStr)
	if err != nil {
		cs.Send(protocol.Error("invalid difficulty"))
		return
	}
	cs.Send(protocol.TopScores(cs.boards.TopEntries(mode, diff, topScoresLimit)))
}

// cleanup runs the implicit-leave path: room membership first, then the
// global session set, then the socket.
func (cs *ClientSession) cleanup() {
	if roomID := cs.currentRoom(); roomID != "" {
		cs.registry.LeaveRoom(cs, roomID)
		cs.setRoom("")
	}
	cs.hub.Remove(cs.id)
	cs.closed.Store(true)
	cs.conn.Close()
}
