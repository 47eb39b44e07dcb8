// Package leaderboard keeps the ranked score records, one capped bucket
// per (mode, difficulty). Buckets are plain text files reloaded at boot
// and rewritten in full after every accepted entry, via a temp file and
// atomic rename so a crash mid-write never corrupts a bucket.
package leaderboard

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// MaxEntriesPerBucket caps every bucket; inserts beyond the cap trim the
// tail after re-sorting.
const MaxEntriesPerBucket = 100

// Store is the in-memory authority over all buckets. Persistence
// failures are logged and retried on the next write; they are never
// surfaced to players.
type Store struct {
	mu      sync.Mutex
	dir     string
	buckets map[string][]domain.LeaderboardEntry
	now     func() time.Time
	log     zerolog.Logger
}

// NewStore bootstraps one bucket per (mode, difficulty) pair from dir.
// Missing files yield empty buckets, not errors.
func NewStore(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create leaderboard directory: %w", err)
	}

	s := &Store{
		dir:     dir,
		buckets: make(map[string][]domain.LeaderboardEntry),
		now:     time.Now,
		log:     log,
	}

	for _, mode := range domain.Modes() {
		for _, diff := range domain.Difficulties() {
			key := bucketKey(mode, diff)
			entries, err := s.loadBucket(key)
			if err != nil {
				log.Error().Err(err).Str("bucket", key).Msg("failed to load leaderboard bucket")
				entries = nil
			}
			s.buckets[key] = entries
		}
	}

	return s, nil
}

func bucketKey(mode domain.Mode, diff domain.Difficulty) string {
	return strings.ToLower(mode.String()) + "_" + strings.ToLower(diff.String())
}

func (s *Store) bucketPath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

func (s *Store) loadBucket(key string) ([]domain.LeaderboardEntry, error) {
	f, err := os.Open(s.bucketPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []domain.LeaderboardEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := domain.ParseLeaderboardEntry(line)
		if err != nil {
			s.log.Warn().Err(err).Str("bucket", key).Msg("skipping corrupt leaderboard entry")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sortEntries(entries)
	return entries, nil
}

func sortEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Less(entries[j])
	})
}

// saveBucket rewrites the whole bucket through a temp file + rename.
func (s *Store) saveBucket(key string, entries []domain.LeaderboardEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Wire())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.bucketPath(key))
}

// AddEntry records a finished match score. Scores below the difficulty's
// qualification threshold are rejected. A user keeps at most one entry
// per bucket; an existing entry is replaced only by a strictly higher
// score. Returns the user's 1-based rank and whether the bucket changed.
func (s *Store) AddEntry(username string, score int, mode domain.Mode, diff domain.Difficulty) (int, bool) {
	if score < diff.QualifyingScore() {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := bucketKey(mode, diff)
	entries := s.buckets[key]

	for i, e := range entries {
		if e.Username != username {
			continue
		}
		if score <= e.Score {
			// Keep the better record.
			return 0, false
		}
		entries = append(entries[:i], entries[i+1:]...)
		break
	}

	entries = append(entries, domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		Mode:       mode,
		Difficulty: diff,
		Timestamp:  s.now(),
	})
	sortEntries(entries)
	if len(entries) > MaxEntriesPerBucket {
		entries = entries[:MaxEntriesPerBucket]
	}
	s.buckets[key] = entries

	if err := s.saveBucket(key, entries); err != nil {
		// In-memory state stays authoritative; the next accepted entry
		// rewrites the file again.
		s.log.Error().Err(err).Str("bucket", key).Msg("failed to persist leaderboard bucket")
	}

	rank := rankOf(entries, username)
	if rank < 0 {
		// Trimmed straight off the cap.
		return 0, false
	}
	return rank, true
}

func rankOf(entries []domain.LeaderboardEntry, username string) int {
	for i, e := range entries {
		if e.Username == username {
			return i + 1
		}
	}
	return -1
}

// TopEntries returns up to limit entries of a bucket, best first.
func (s *Store) TopEntries(mode domain.Mode, diff domain.Difficulty, limit int) []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.buckets[bucketKey(mode, diff)]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out
}

// UserEntries scans every bucket for the user's records, best first.
func (s *Store) UserEntries(username string) []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.LeaderboardEntry
	for _, entries := range s.buckets {
		for _, e := range entries {
			if e.Username == username {
				out = append(out, e)
			}
		}
	}
	sortEntries(out)
	return out
}

// UserRank returns the user's 1-based position in a bucket, or -1 when
// not ranked.
func (s *Store) UserRank(username string, mode domain.Mode, diff domain.Difficulty) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rankOf(s.buckets[bucketKey(mode, diff)], username)
}
