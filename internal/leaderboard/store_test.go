package leaderboard

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()

	s, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	// Deterministic whole-second clock: entries survive the RFC3339
	// round trip unchanged and ties order predictably.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestAddEntryQualificationThresholds(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	testCases := []struct {
		diff  domain.Difficulty
		score int
		want  bool
	}{
		{domain.DifficultyEasy, 499, false},
		{domain.DifficultyEasy, 500, true},
		{domain.DifficultyMedium, 749, false},
		{domain.DifficultyMedium, 750, true},
		{domain.DifficultyHard, 999, false},
		{domain.DifficultyHard, 1000, true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%d", tc.diff, tc.score), func(t *testing.T) {
			rank, changed := s.AddEntry("alice", tc.score, domain.ModeJava, tc.diff)
			assert.Equal(t, tc.want, changed)
			if tc.want {
				assert.Equal(t, 1, rank)
			} else {
				assert.Zero(t, rank)
			}
		})
	}
}

func TestAddEntryReplacesOnlyHigherScores(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	rank, changed := s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	require.True(t, changed)
	require.Equal(t, 1, rank)

	// An equal or lower score keeps the existing record.
	_, changed = s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	assert.False(t, changed)
	_, changed = s.AddEntry("alice", 600, domain.ModeJava, domain.DifficultyEasy)
	assert.False(t, changed)

	rank, changed = s.AddEntry("alice", 900, domain.ModeJava, domain.DifficultyEasy)
	assert.True(t, changed)
	assert.Equal(t, 1, rank)

	entries := s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, 900, entries[0].Score)
}

func TestTopEntriesOrdering(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	s.AddEntry("alice", 700, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("bob", 900, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("carol", 800, domain.ModeJava, domain.DifficultyEasy)
	// dave ties bob later, so dave ranks above him.
	s.AddEntry("dave", 900, domain.ModeJava, domain.DifficultyEasy)

	entries := s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 0)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Username
	}
	assert.Equal(t, []string{"dave", "bob", "carol", "alice"}, names)

	assert.Equal(t, 1, s.UserRank("dave", domain.ModeJava, domain.DifficultyEasy))
	assert.Equal(t, 4, s.UserRank("alice", domain.ModeJava, domain.DifficultyEasy))
	assert.Equal(t, -1, s.UserRank("ghost", domain.ModeJava, domain.DifficultyEasy))

	top2 := s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 2)
	assert.Len(t, top2, 2)
	assert.Equal(t, "dave", top2[0].Username)
}

func TestBucketCapTrimsLowestScores(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	for i := 0; i < MaxEntriesPerBucket; i++ {
		_, changed := s.AddEntry(fmt.Sprintf("player%03d", i), 1000+i, domain.ModeJava, domain.DifficultyEasy)
		require.True(t, changed)
	}

	// Qualifies but lands below the worst ranked entry: trimmed off.
	rank, changed := s.AddEntry("latecomer", 600, domain.ModeJava, domain.DifficultyEasy)
	assert.False(t, changed)
	assert.Zero(t, rank)

	entries := s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 0)
	require.Len(t, entries, MaxEntriesPerBucket)

	// A strong score displaces the current tail.
	rank, changed = s.AddEntry("champion", 5000, domain.ModeJava, domain.DifficultyEasy)
	assert.True(t, changed)
	assert.Equal(t, 1, rank)
	assert.Equal(t, -1, s.UserRank("player000", domain.ModeJava, domain.DifficultyEasy))
}

func TestBucketsAreIndependent(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("alice", 1200, domain.ModeJava, domain.DifficultyHard)
	s.AddEntry("alice", 800, domain.ModePython, domain.DifficultyEasy)

	assert.Len(t, s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 0), 1)
	assert.Len(t, s.TopEntries(domain.ModeJava, domain.DifficultyHard, 0), 1)
	assert.Len(t, s.TopEntries(domain.ModePython, domain.DifficultyEasy, 0), 1)
	assert.Empty(t, s.TopEntries(domain.ModeC, domain.DifficultyEasy, 0))
}

func TestUserEntriesAcrossBuckets(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("alice", 1500, domain.ModeC, domain.DifficultyHard)
	s.AddEntry("bob", 900, domain.ModeJava, domain.DifficultyEasy)

	entries := s.UserEntries("alice")
	require.Len(t, entries, 2)
	assert.Equal(t, 1500, entries[0].Score)
	assert.Equal(t, 800, entries[1].Score)

	assert.Empty(t, s.UserEntries("ghost"))
}

func TestStoreReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)

	s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("bob", 900, domain.ModeJava, domain.DifficultyEasy)
	s.AddEntry("carol", 1200, domain.ModeKotlin, domain.DifficultyHard)

	reloaded, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	for _, mode := range domain.Modes() {
		for _, diff := range domain.Difficulties() {
			want := s.TopEntries(mode, diff, 0)
			got := reloaded.TopEntries(mode, diff, 0)
			if d := cmp.Diff(want, got); d != "" {
				t.Errorf("bucket %s/%s mismatch (-want +got):\n%s", mode, diff, d)
			}
		}
	}
}

func TestLoadSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "java_easy.txt")
	content := "garbage line\n" +
		"alice,800,JAVA,EASY,2025-06-01T12:00:01Z\n" +
		"bob,notanumber,JAVA,EASY,2025-06-01T12:00:02Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	entries := s.TopEntries(domain.ModeJava, domain.DifficultyEasy, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
}

func TestMissingDirectoryIsCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "leaderboard")

	s, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	s.AddEntry("alice", 800, domain.ModeJava, domain.DifficultyEasy)
	assert.FileExists(t, filepath.Join(dir, "java_easy.txt"))
}
