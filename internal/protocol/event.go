package protocol

import (
	"strconv"
	"strings"
	"time"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// Outbound event formatters. Every server-to-client line is produced
// here so the wire format lives in exactly one place.

func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func healthField(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

func join(fields ...string) string {
	return strings.Join(fields, fieldSep)
}

func Users(count int) string {
	return join("USERS", strconv.Itoa(count))
}

func RoomListResponse(rooms []domain.RoomInfo) string {
	fields := make([]string, 0, len(rooms)+1)
	fields = append(fields, "ROOM_LIST_RESPONSE")
	for _, r := range rooms {
		fields = append(fields, r.Wire())
	}
	return join(fields...)
}

func CreateRoomResponse(ok bool, message string, info *domain.RoomInfo) string {
	fields := []string{"CREATE_ROOM_RESPONSE", boolField(ok), message}
	if info != nil {
		fields = append(fields, info.Wire(), info.ID)
	}
	return join(fields...)
}

func JoinRoomResponse(ok bool, message string, info *domain.RoomInfo) string {
	fields := []string{"JOIN_ROOM_RESPONSE", boolField(ok), message}
	if info != nil {
		fields = append(fields, info.Wire())
	}
	return join(fields...)
}

func PlayerUpdate(roomID string, names []string) string {
	return join("PLAYER_UPDATE", roomID, strconv.Itoa(len(names)), strings.Join(names, ";"))
}

func SettingsUpdate(roomID string, mode domain.Mode, diff domain.Difficulty) string {
	return join("SETTINGS_UPDATE", roomID, mode.String(), diff.String())
}

func GameStart() string {
	return "GAME_START"
}

func WordSpawned(roomID string, w domain.Word) string {
	fields := []string{"WORD_SPAWNED", roomID, w.Text, strconv.Itoa(w.X)}
	if w.Effect != domain.EffectNone {
		fields = append(fields, string(w.Effect))
	}
	return join(fields...)
}

func WordMatched(roomID, text, player string, score int) string {
	return join("WORD_MATCHED", roomID, text, player, strconv.Itoa(score))
}

func WordMissedEvent(roomID, text, player string, health float64) string {
	return join("WORD_MISSED", roomID, text, player, healthField(health))
}

func BlindEffect(roomID, player string, duration time.Duration) string {
	return join("BLIND_EFFECT", roomID, player, strconv.FormatInt(duration.Milliseconds(), 10))
}

func PHUpdate(roomID, player string, health float64) string {
	return join("PH_UPDATE", roomID, player, healthField(health))
}

func GameOver(roomID, winner string, winnerScore, loserScore int, forfeit bool) string {
	fields := []string{
		"GAME_OVER", roomID, winner,
		strconv.Itoa(winnerScore), strconv.Itoa(loserScore),
	}
	if forfeit {
		fields = append(fields, "FORFEIT")
	}
	return join(fields...)
}

func LeaderboardUpdate(roomID, player string, rank int) string {
	return join("LEADERBOARD_UPDATE", roomID, player, strconv.Itoa(rank))
}

func TopScores(entries []domain.LeaderboardEntry) string {
	return entriesEvent("TOP_SCORES", entries)
}

func UserRecords(entries []domain.LeaderboardEntry) string {
	return entriesEvent("USER_RECORDS", entries)
}

func entriesEvent(head string, entries []domain.LeaderboardEntry) string {
	fields := make([]string, 0, len(entries)+1)
	fields = append(fields, head)
	for _, e := range entries {
		fields = append(fields, e.Wire())
	}
	return join(fields...)
}

func ChatMessage(roomID, sender, text string) string {
	return join("CHAT", roomID, sender, text)
}

func HostLeft(roomID, message string) string {
	return join("HOST_LEFT", roomID, message)
}

func NewHost(roomID, name string) string {
	return join("NEW_HOST", roomID, name)
}

func RoomClosed(roomID, reason string) string {
	return join("ROOM_CLOSED", roomID, reason)
}

func Error(message string) string {
	return join("ERROR", message)
}
