// Package protocol implements the line protocol spoken between clients
// and the server: one pipe-delimited message per line. Inbound lines are
// decoded once into a closed set of command variants; outbound events are
// built by the formatters in event.go so that no handler assembles wire
// strings by hand.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const fieldSep = "|"

var ErrMalformed = errors.New("malformed command")

// Command is the closed set of decoded client commands. Handlers switch
// over the concrete types, so adding a variant surfaces every dispatch
// site that needs updating.
type Command interface {
	isCommand()
}

type Login struct {
	Name string
}

type CreateRoom struct {
	Name       string
	Password   string
	Mode       string
	Difficulty string
	Capacity   int
}

type JoinRoom struct {
	RoomID   string
	Password string
}

type LeaveRoom struct {
	RoomID string
}

type Chat struct {
	RoomID string
	Text   string
}

type UpdateSettings struct {
	RoomID string
	Field  string
	Value  string
}

type StartGame struct {
	RoomID string
}

type RoomList struct{}

type WordInput struct {
	RoomID string
	Text   string
}

type WordMissed struct {
	RoomID string
	Text   string
}

type LeaveGame struct {
	RoomID string
}

type LeaderboardTop struct {
	Mode       string
	Difficulty string
}

type LeaderboardMine struct {
	Mode       string
	Difficulty string
}

type Logout struct{}

func (Login) isCommand()           {}
func (CreateRoom) isCommand()      {}
func (JoinRoom) isCommand()        {}
func (LeaveRoom) isCommand()       {}
func (Chat) isCommand()            {}
func (UpdateSettings) isCommand()  {}
func (StartGame) isCommand()       {}
func (RoomList) isCommand()        {}
func (WordInput) isCommand()       {}
func (WordMissed) isCommand()      {}
func (LeaveGame) isCommand()       {}
func (LeaderboardTop) isCommand()  {}
func (LeaderboardMine) isCommand() {}
func (Logout) isCommand()          {}

// Parse decodes one protocol line. The returned error wraps ErrMalformed
// for anything the server should log and skip.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	parts := strings.Split(line, fieldSep)
	switch parts[0] {
	case "LOGIN":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("%w: LOGIN needs a name", ErrMalformed)
		}
		return Login{Name: parts[1]}, nil

	case "CREATE_ROOM":
		if len(parts) < 6 {
			return nil, fmt.Errorf("%w: CREATE_ROOM needs 5 fields, got %d", ErrMalformed, len(parts)-1)
		}
		capacity, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("%w: CREATE_ROOM capacity %q", ErrMalformed, parts[5])
		}
		return CreateRoom{
			Name:       parts[1],
			Password:   parts[2],
			Mode:       parts[3],
			Difficulty: parts[4],
			Capacity:   capacity,
		}, nil

	case "JOIN_ROOM":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("%w: JOIN_ROOM needs a room id", ErrMalformed)
		}
		cmd := JoinRoom{RoomID: parts[1]}
		if len(parts) >= 3 {
			cmd.Password = parts[2]
		}
		return cmd, nil

	case "LEAVE_ROOM":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("%w: LEAVE_ROOM needs a room id", ErrMalformed)
		}
		return LeaveRoom{RoomID: parts[1]}, nil

	case "CHAT":
		if len(parts) < 3 {
			return nil, fmt.Errorf("%w: CHAT needs a room id and text", ErrMalformed)
		}
		// Chat text may itself contain the field separator.
		return Chat{RoomID: parts[1], Text: strings.Join(parts[2:], fieldSep)}, nil

	case "UPDATE_SETTINGS":
		if len(parts) < 4 {
			return nil, fmt.Errorf("%w: UPDATE_SETTINGS needs room id, field and value", ErrMalformed)
		}
		return UpdateSettings{RoomID: parts[1], Field: parts[2], Value: parts[3]}, nil

	case "START_GAME":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("%w: START_GAME needs a room id", ErrMalformed)
		}
		return StartGame{RoomID: parts[1]}, nil

	case "ROOM_LIST":
		return RoomList{}, nil

	case "GAME_ACTION":
		return parseGameAction(parts)

	case "LOGOUT":
		return Logout{}, nil
	}

	return nil, fmt.Errorf("%w: unknown command %q", ErrMalformed, parts[0])
}

func parseGameAction(parts []string) (Command, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: GAME_ACTION needs a room id and an action", ErrMalformed)
	}
	roomID, action, params := parts[1], parts[2], parts[3:]

	switch action {
	case "WORD_INPUT":
		if len(params) < 1 || params[0] == "" {
			return nil, fmt.Errorf("%w: WORD_INPUT needs a word", ErrMalformed)
		}
		return WordInput{RoomID: roomID, Text: params[0]}, nil

	case "WORD_MISSED":
		if len(params) < 1 || params[0] == "" {
			return nil, fmt.Errorf("%w: WORD_MISSED needs a word", ErrMalformed)
		}
		return WordMissed{RoomID: roomID, Text: params[0]}, nil

	case "PLAYER_LEAVE_GAME":
		return LeaveGame{RoomID: roomID}, nil

	case "LEADERBOARD":
		if len(params) < 3 {
			return nil, fmt.Errorf("%w: LEADERBOARD needs a query, mode and difficulty", ErrMalformed)
		}
		switch params[0] {
		case "GET_TOP":
			return LeaderboardTop{Mode: params[1], Difficulty: params[2]}, nil
		case "GET_MY_RECORDS":
			return LeaderboardMine{Mode: params[1], Difficulty: params[2]}, nil
		}
		return nil, fmt.Errorf("%w: unknown leaderboard query %q", ErrMalformed, params[0])
	}

	return nil, fmt.Errorf("%w: unknown game action %q", ErrMalformed, action)
}
