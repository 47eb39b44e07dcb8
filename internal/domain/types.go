package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode selects which word pool a match draws from.
type Mode string

const (
	ModeJava   Mode = "JAVA"
	ModePython Mode = "PYTHON"
	ModeKotlin Mode = "KOTLIN"
	ModeC      Mode = "C"
)

// Modes lists every playable mode, in the order buckets are bootstrapped.
func Modes() []Mode {
	return []Mode{ModeJava, ModePython, ModeKotlin, ModeC}
}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeJava:
		return ModeJava, nil
	case ModePython:
		return ModePython, nil
	case ModeKotlin:
		return ModeKotlin, nil
	case ModeC:
		return ModeC, nil
	}
	return "", fmt.Errorf("unknown game mode %q", s)
}

func (m Mode) String() string { return string(m) }

// Difficulty controls the word spawn rate and the leaderboard
// qualification threshold.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToUpper(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) String() string { return string(d) }

// SpawnInterval is the time between word spawns for a match at this
// difficulty.
func (d Difficulty) SpawnInterval() time.Duration {
	switch d {
	case DifficultyHard:
		return time.Second
	case DifficultyMedium:
		return 1500 * time.Millisecond
	default:
		return 2 * time.Second
	}
}

// QualifyingScore is the minimum score accepted onto this difficulty's
// leaderboard.
func (d Difficulty) QualifyingScore() int {
	switch d {
	case DifficultyHard:
		return 1000
	case DifficultyMedium:
		return 750
	default:
		return 500
	}
}

// Effect is an optional modifier carried by a spawned word.
type Effect string

const (
	EffectNone  Effect = ""
	EffectBoost Effect = "SCORE_BOOST"
	EffectBlind Effect = "BLIND_OPPONENT"
)

// Word is one spawned word instance.
type Word struct {
	Text   string
	X      int
	Effect Effect
}

// RoomInfo is the immutable snapshot of a room used on the wire and in
// room-list broadcasts.
type RoomInfo struct {
	ID         string
	Name       string
	Current    int
	Max        int
	Mode       Mode
	Difficulty Difficulty
	Host       string
}

// Wire serializes a room as id,name,current,max,mode,difficulty,host.
func (ri RoomInfo) Wire() string {
	return strings.Join([]string{
		ri.ID,
		ri.Name,
		strconv.Itoa(ri.Current),
		strconv.Itoa(ri.Max),
		ri.Mode.String(),
		ri.Difficulty.String(),
		ri.Host,
	}, ",")
}
