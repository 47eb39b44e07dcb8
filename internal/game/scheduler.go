package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// tickResolution is the granularity of the shared scheduler. Sessions
// derive their own spawn and health-check cadence from the timestamps it
// passes in.
const tickResolution = 100 * time.Millisecond

// Scheduler drives every active session from a single goroutine and
// ticker, keyed by room id, so resource usage stays flat as concurrent
// matches grow.
type Scheduler struct {
	mu       sync.Mutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		log:      log,
	}
}

// Run ticks until Close is called. Meant to run on its own goroutine.
func (sc *Scheduler) Run() {
	ticker := time.NewTicker(tickResolution)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, s := range sc.snapshot() {
				s.Tick(now)
			}
		case <-sc.stop:
			return
		}
	}
}

func (sc *Scheduler) snapshot() []*Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	out := make([]*Session, 0, len(sc.sessions))
	for _, s := range sc.sessions {
		out = append(out, s)
	}
	return out
}

func (sc *Scheduler) Add(roomID string, s *Session) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sessions[roomID] = s
	sc.log.Debug().Str("room", roomID).Int("active", len(sc.sessions)).Msg("session scheduled")
}

func (sc *Scheduler) Remove(roomID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.sessions, roomID)
}

func (sc *Scheduler) Close() {
	sc.stopOnce.Do(func() { close(sc.stop) })
}
