package game

import (
	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// Client is one connected player as the game layer sees it. Implemented
// by server.ClientSession; tests substitute testify mocks.
type Client interface {
	ID() string
	Username() string
	// Send delivers one protocol line. Delivery failures are handled
	// inside the implementation and never propagate to the caller.
	Send(line string)
}

// Broadcaster fans a line out to every connected session, not just one
// room. Used for the online count and the global room list.
type Broadcaster interface {
	BroadcastAll(line string)
}

// WordProvider yields spawn draws for a mode.
type WordProvider interface {
	Next(mode domain.Mode) domain.Word
}

// ScoreRecorder accepts a finished match score and reports the achieved
// rank when the record qualified and changed the bucket.
type ScoreRecorder interface {
	AddEntry(username string, score int, mode domain.Mode, diff domain.Difficulty) (int, bool)
}
