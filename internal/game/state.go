package game

import (
	"sync"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// Match tuning constants, shared with the session.
const (
	// StartingHealth is every player's pH at match start. It only goes
	// down from here.
	StartingHealth = 7.0
	// MissPenalty is subtracted from every participant's health when a
	// word is missed.
	MissPenalty = 0.2

	baseScorePerChar = 10
	boostMultiplier  = 1.5
)

// Status is the match lifecycle: waiting → in-progress → finished.
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

// State is the mutable per-match state: scores, health values and the
// set of currently spawned words. All operations are safe under
// concurrent invocation from the tick scheduler and input dispatch.
type State struct {
	mu      sync.Mutex
	players []string
	scores  map[string]int
	health  map[string]float64
	active  []domain.Word
	status  Status
}

// NewState initializes a match for the given players, in join order.
// Everyone starts at zero score and neutral pH.
func NewState(players []string) *State {
	st := &State{
		players: append([]string(nil), players...),
		scores:  make(map[string]int, len(players)),
		health:  make(map[string]float64, len(players)),
		status:  StatusWaiting,
	}
	for _, p := range players {
		st.scores[p] = 0
		st.health[p] = StartingHealth
	}
	return st
}

func (st *State) Start() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = StatusInProgress
}

func (st *State) End() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = StatusFinished
}

func (st *State) Status() Status {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.status
}

// Players returns the participants in join order.
func (st *State) Players() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]string(nil), st.players...)
}

// AddWord registers a newly spawned word instance.
func (st *State) AddWord(w domain.Word) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.active = append(st.active, w)
}

// RemoveWord consumes the first active word with the given text. Each
// spawned instance can be consumed at most once; a second removal of the
// same text after the set is empty reports false.
func (st *State) RemoveWord(text string) (domain.Word, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for i, w := range st.active {
		if w.Text == text {
			st.active = append(st.active[:i], st.active[i+1:]...)
			return w, true
		}
	}
	return domain.Word{}, false
}

// ActiveWordCount reports how many spawned words are still unconsumed.
func (st *State) ActiveWordCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.active)
}

// ScoreFor computes the points a matched word is worth.
func ScoreFor(w domain.Word) int {
	points := len(w.Text) * baseScorePerChar
	if w.Effect == domain.EffectBoost {
		points = int(float64(points) * boostMultiplier)
	}
	return points
}

// AddScore credits points to a player and returns the new total. Scores
// are monotonically non-decreasing.
func (st *State) AddScore(player string, points int) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	if points < 0 {
		points = 0
	}
	st.scores[player] += points
	return st.scores[player]
}

// DecreaseHealth lowers a player's pH, clamped at zero, and returns the
// new value.
func (st *State) DecreaseHealth(player string, amount float64) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	h, ok := st.health[player]
	if !ok {
		return 0
	}
	h -= amount
	if h < 0 {
		h = 0
	}
	st.health[player] = h
	return h
}

func (st *State) Score(player string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.scores[player]
}

func (st *State) Health(player string) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.health[player]
}

// IsOver reports whether any participant's health has reached zero.
func (st *State) IsOver() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, h := range st.health {
		if h <= 0 {
			return true
		}
	}
	return false
}

// Winner applies the win policy: a unique survivor wins outright;
// otherwise the highest score decides — among survivors when any remain,
// among everyone when none do. Ties resolve to the earliest-joined
// player.
func (st *State) Winner() string {
	st.mu.Lock()
	defer st.mu.Unlock()

	var survivors []string
	for _, p := range st.players {
		if st.health[p] > 0 {
			survivors = append(survivors, p)
		}
	}

	if len(survivors) == 1 {
		return survivors[0]
	}

	candidates := survivors
	if len(candidates) == 0 {
		candidates = st.players
	}

	winner := ""
	best := -1
	for _, p := range candidates {
		if st.scores[p] > best {
			best = st.scores[p]
			winner = p
		}
	}
	return winner
}

// OpponentOf returns the other participant in a two-player match, or ""
// when there is none.
func (st *State) OpponentOf(player string) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, p := range st.players {
		if p != player {
			return p
		}
	}
	return ""
}
