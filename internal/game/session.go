package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
	"github.com/HONGMOEJI/acid-rain/internal/protocol"
)

const (
	healthCheckInterval = time.Second
	blindDuration       = 3 * time.Second
)

// Session owns one match's lifecycle: spawn ticks, input resolution,
// miss handling, win and forfeit detection. Every mutation runs under
// one mutex, so spawns, inputs, misses and leaves are linearized per
// room and no broadcast is ever based on a stale intermediate state.
// Once the session stops, no further event for the room is emitted.
type Session struct {
	roomID  string
	mode    domain.Mode
	diff    domain.Difficulty
	members []Client

	state  *State
	words  WordProvider
	boards ScoreRecorder
	log    zerolog.Logger

	// onFinish detaches the session from the scheduler and the room.
	// Callers must not hold their own locks around session methods, as
	// this fires from inside the session's critical section.
	onFinish func(roomID string)

	mu              sync.Mutex
	stopped         bool
	nextSpawn       time.Time
	nextHealthCheck time.Time
}

func NewSession(
	roomID string,
	mode domain.Mode,
	diff domain.Difficulty,
	members []Client,
	words WordProvider,
	boards ScoreRecorder,
	onFinish func(roomID string),
	log zerolog.Logger,
) *Session {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Username()
	}

	return &Session{
		roomID:   roomID,
		mode:     mode,
		diff:     diff,
		members:  append([]Client(nil), members...),
		state:    NewState(names),
		words:    words,
		boards:   boards,
		onFinish: onFinish,
		log:      log.With().Str("room", roomID).Logger(),
	}
}

// State exposes the match state for registry queries and tests.
func (s *Session) State() *State { return s.state }

// Start transitions the match to in-progress and arms both periodic
// activities. The first word spawns on the next scheduler tick.
func (s *Session) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state.Status() != StatusWaiting {
		return
	}
	s.state.Start()
	s.nextSpawn = now
	s.nextHealthCheck = now.Add(healthCheckInterval)

	s.broadcastLocked(protocol.GameStart())
	s.log.Info().
		Str("mode", s.mode.String()).
		Str("difficulty", s.diff.String()).
		Int("players", len(s.members)).
		Msg("match started")
}

// Tick is invoked by the shared scheduler. It drives the spawn cadence
// and the fixed-interval health check that backstops miss-driven
// game-over detection.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state.Status() != StatusInProgress {
		return
	}

	if !now.Before(s.nextSpawn) {
		s.spawnLocked()
		s.nextSpawn = now.Add(s.diff.SpawnInterval())
	}

	if !now.Before(s.nextHealthCheck) {
		s.nextHealthCheck = now.Add(healthCheckInterval)
		if s.state.IsOver() {
			s.finishLocked(s.state.Winner(), false)
		}
	}
}

func (s *Session) spawnLocked() {
	w := s.words.Next(s.mode)
	s.state.AddWord(w)
	s.broadcastLocked(protocol.WordSpawned(s.roomID, w))
}

// HandleInput resolves a player's typed word against the active set. A
// hit awards length-based points (boosted words pay 1.5×), rebroadcasts
// the player's unchanged health, and fires the blind notification at the
// opponent when the word carried that effect. Inputs that match nothing
// are ignored.
func (s *Session) HandleInput(player, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state.Status() != StatusInProgress {
		return
	}

	w, ok := s.state.RemoveWord(text)
	if !ok {
		return
	}

	total := s.state.AddScore(player, ScoreFor(w))
	s.broadcastLocked(protocol.WordMatched(s.roomID, w.Text, player, total))
	s.broadcastLocked(protocol.PHUpdate(s.roomID, player, s.state.Health(player)))

	if w.Effect == domain.EffectBlind {
		if opponent := s.state.OpponentOf(player); opponent != "" {
			s.broadcastLocked(protocol.BlindEffect(s.roomID, opponent, blindDuration))
		}
	}
}

// HandleMiss consumes a word that fell off the play field and charges
// every participant the miss penalty. If anyone bottoms out, the match
// ends immediately rather than waiting for the periodic check.
func (s *Session) HandleMiss(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state.Status() != StatusInProgress {
		return
	}

	if _, ok := s.state.RemoveWord(text); !ok {
		return
	}

	for _, p := range s.state.Players() {
		h := s.state.DecreaseHealth(p, MissPenalty)
		s.broadcastLocked(protocol.WordMissedEvent(s.roomID, text, p, h))
	}

	if s.state.IsOver() {
		s.finishLocked(s.state.Winner(), false)
	}
}

// HandleLeave ends the match by forfeit: the session stops before any
// further broadcast and the best-scoring remaining participant takes the
// win.
func (s *Session) HandleLeave(player string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state.Status() != StatusInProgress {
		return
	}

	winner := ""
	best := -1
	for _, p := range s.state.Players() {
		if p == player {
			continue
		}
		if sc := s.state.Score(p); sc > best {
			best = sc
			winner = p
		}
	}
	if winner == "" {
		// Nobody left to win; just tear the match down.
		s.stopLocked()
		return
	}

	s.finishLocked(winner, true)
}

// Stop cancels the session without declaring a result, e.g. when the
// room itself is destroyed.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopLocked()
}

// Finished reports whether the session has stopped for any reason.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) stopLocked() {
	s.stopped = true
	s.state.End()
	if s.onFinish != nil {
		s.onFinish(s.roomID)
	}
}

// finishLocked resolves the match: cancels the ticks, marks the state
// finished, submits the winner's score and emits the game-over events.
func (s *Session) finishLocked(winner string, forfeit bool) {
	winnerScore := s.state.Score(winner)
	loserScore := 0
	for _, p := range s.state.Players() {
		if p == winner {
			continue
		}
		if sc := s.state.Score(p); sc > loserScore {
			loserScore = sc
		}
	}

	s.stopped = true
	s.state.End()
	if s.onFinish != nil {
		s.onFinish(s.roomID)
	}

	s.broadcastLocked(protocol.GameOver(s.roomID, winner, winnerScore, loserScore, forfeit))

	if rank, ok := s.boards.AddEntry(winner, winnerScore, s.mode, s.diff); ok {
		s.broadcastLocked(protocol.LeaderboardUpdate(s.roomID, winner, rank))
	}

	s.log.Info().
		Str("winner", winner).
		Int("winner_score", winnerScore).
		Int("loser_score", loserScore).
		Bool("forfeit", forfeit).
		Msg("match finished")
}

// broadcastLocked delivers a line to every participant. Send failures
// are isolated inside each Client implementation.
func (s *Session) broadcastLocked(line string) {
	for _, c := range s.members {
		c.Send(line)
	}
}
