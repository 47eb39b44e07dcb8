package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LeaderboardEntry is one ranked record in a (mode, difficulty) bucket.
type LeaderboardEntry struct {
	Username   string
	Score      int
	Mode       Mode
	Difficulty Difficulty
	Timestamp  time.Time
}

// Wire serializes an entry as username,score,mode,difficulty,timestamp.
// The same format is used in bucket files and in TOP_SCORES / USER_RECORDS
// payloads.
func (e LeaderboardEntry) Wire() string {
	return strings.Join([]string{
		e.Username,
		strconv.Itoa(e.Score),
		e.Mode.String(),
		e.Difficulty.String(),
		e.Timestamp.Format(time.RFC3339),
	}, ",")
}

// ParseLeaderboardEntry is the inverse of Wire. Corrupt lines yield an
// error so callers can skip them without dropping the whole bucket.
func ParseLeaderboardEntry(s string) (LeaderboardEntry, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 5 {
		return LeaderboardEntry{}, fmt.Errorf("leaderboard entry %q: want 5 fields, got %d", s, len(parts))
	}

	score, err := strconv.Atoi(parts[1])
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("leaderboard entry %q: bad score: %w", s, err)
	}
	mode, err := ParseMode(parts[2])
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("leaderboard entry %q: %w", s, err)
	}
	diff, err := ParseDifficulty(parts[3])
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("leaderboard entry %q: %w", s, err)
	}
	ts, err := time.Parse(time.RFC3339, parts[4])
	if err != nil {
		return LeaderboardEntry{}, fmt.Errorf("leaderboard entry %q: bad timestamp: %w", s, err)
	}

	return LeaderboardEntry{
		Username:   parts[0],
		Score:      score,
		Mode:       mode,
		Difficulty: diff,
		Timestamp:  ts,
	}, nil
}

// Less orders entries score descending, ties broken by most recent first.
func (e LeaderboardEntry) Less(other LeaderboardEntry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	return e.Timestamp.After(other.Timestamp)
}
