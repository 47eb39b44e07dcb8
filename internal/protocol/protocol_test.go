package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc string
		line string
		want Command
	}{
		{
			desc: "login",
			line: "LOGIN|alice",
			want: Login{Name: "alice"},
		},
		{
			desc: "create room",
			line: "CREATE_ROOM|myroom|hunter2|JAVA|EASY|2",
			want: CreateRoom{Name: "myroom", Password: "hunter2", Mode: "JAVA", Difficulty: "EASY", Capacity: 2},
		},
		{
			desc: "create room without password",
			line: "CREATE_ROOM|myroom||PYTHON|HARD|4",
			want: CreateRoom{Name: "myroom", Mode: "PYTHON", Difficulty: "HARD", Capacity: 4},
		},
		{
			desc: "join room with password",
			line: "JOIN_ROOM|R1|hunter2",
			want: JoinRoom{RoomID: "R1", Password: "hunter2"},
		},
		{
			desc: "join room without password",
			line: "JOIN_ROOM|R1",
			want: JoinRoom{RoomID: "R1"},
		},
		{
			desc: "leave room",
			line: "LEAVE_ROOM|R1",
			want: LeaveRoom{RoomID: "R1"},
		},
		{
			desc: "chat keeps separators inside text",
			line: "CHAT|R1|hello|world",
			want: Chat{RoomID: "R1", Text: "hello|world"},
		},
		{
			desc: "update settings",
			line: "UPDATE_SETTINGS|R1|MODE|KOTLIN",
			want: UpdateSettings{RoomID: "R1", Field: "MODE", Value: "KOTLIN"},
		},
		{
			desc: "start game",
			line: "START_GAME|R1",
			want: StartGame{RoomID: "R1"},
		},
		{
			desc: "room list",
			line: "ROOM_LIST",
			want: RoomList{},
		},
		{
			desc: "word input",
			line: "GAME_ACTION|R1|WORD_INPUT|public",
			want: WordInput{RoomID: "R1", Text: "public"},
		},
		{
			desc: "word missed",
			line: "GAME_ACTION|R1|WORD_MISSED|public",
			want: WordMissed{RoomID: "R1", Text: "public"},
		},
		{
			desc: "leave game",
			line: "GAME_ACTION|R1|PLAYER_LEAVE_GAME",
			want: LeaveGame{RoomID: "R1"},
		},
		{
			desc: "leaderboard top",
			line: "GAME_ACTION|R1|LEADERBOARD|GET_TOP|JAVA|HARD",
			want: LeaderboardTop{Mode: "JAVA", Difficulty: "HARD"},
		},
		{
			desc: "leaderboard my records",
			line: "GAME_ACTION|R1|LEADERBOARD|GET_MY_RECORDS|JAVA|HARD",
			want: LeaderboardMine{Mode: "JAVA", Difficulty: "HARD"},
		},
		{
			desc: "logout",
			line: "LOGOUT",
			want: Logout{},
		},
		{
			desc: "trailing newline is stripped",
			line: "LOGIN|bob\r\n",
			want: Login{Name: "bob"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	lines := []string{
		"",
		"BOGUS|x",
		"LOGIN",
		"LOGIN|",
		"CREATE_ROOM|name|pw|JAVA|EASY",
		"CREATE_ROOM|name|pw|JAVA|EASY|two",
		"JOIN_ROOM",
		"GAME_ACTION|R1",
		"GAME_ACTION|R1|DANCE",
		"GAME_ACTION|R1|WORD_INPUT",
		"GAME_ACTION|R1|LEADERBOARD|GET_TOP|JAVA",
		"GAME_ACTION|R1|LEADERBOARD|GET_EVERYTHING|JAVA|HARD",
		"UPDATE_SETTINGS|R1|MODE",
	}

	for _, line := range lines {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrMalformed, "line %q", line)
	}
}

func TestEventFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "USERS|3", Users(3))
	assert.Equal(t, "GAME_START", GameStart())
	assert.Equal(t, "WORD_MATCHED|R1|public|A|60", WordMatched("R1", "public", "A", 60))
	assert.Equal(t, "WORD_MISSED|R1|public|A|6.8", WordMissedEvent("R1", "public", "A", 6.8))
	assert.Equal(t, "PH_UPDATE|R1|A|7.0", PHUpdate("R1", "A", 7.0))
	assert.Equal(t, "BLIND_EFFECT|R1|B|3000", BlindEffect("R1", "B", 3*time.Second))
	assert.Equal(t, "GAME_OVER|R1|A|1200|400", GameOver("R1", "A", 1200, 400, false))
	assert.Equal(t, "GAME_OVER|R1|A|1200|400|FORFEIT", GameOver("R1", "A", 1200, 400, true))
	assert.Equal(t, "LEADERBOARD_UPDATE|R1|A|4", LeaderboardUpdate("R1", "A", 4))
	assert.Equal(t, "PLAYER_UPDATE|R1|2|alice;bob", PlayerUpdate("R1", []string{"alice", "bob"}))
	assert.Equal(t, "NEW_HOST|R1|bob", NewHost("R1", "bob"))
	assert.Equal(t, "HOST_LEFT|R1|host left the room", HostLeft("R1", "host left the room"))
	assert.Equal(t, "ROOM_CLOSED|R1|all players left", RoomClosed("R1", "all players left"))
	assert.Equal(t, "ERROR|nope", Error("nope"))
	assert.Equal(t, "CHAT|R1|alice|hi there", ChatMessage("R1", "alice", "hi there"))
	assert.Equal(t, "SETTINGS_UPDATE|R1|JAVA|HARD",
		SettingsUpdate("R1", domain.ModeJava, domain.DifficultyHard))
}

func TestWordSpawnedEvent(t *testing.T) {
	t.Parallel()

	plain := domain.Word{Text: "public", X: 250}
	assert.Equal(t, "WORD_SPAWNED|R1|public|250", WordSpawned("R1", plain))

	boosted := domain.Word{Text: "public", X: 250, Effect: domain.EffectBoost}
	assert.Equal(t, "WORD_SPAWNED|R1|public|250|SCORE_BOOST", WordSpawned("R1", boosted))
}

func TestRoomListResponse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ROOM_LIST_RESPONSE", RoomListResponse(nil))

	rooms := []domain.RoomInfo{
		{ID: "R1", Name: "alpha", Current: 1, Max: 2, Mode: domain.ModeJava, Difficulty: domain.DifficultyEasy, Host: "alice"},
		{ID: "R2", Name: "beta", Current: 2, Max: 4, Mode: domain.ModeC, Difficulty: domain.DifficultyHard, Host: "bob"},
	}
	assert.Equal(t,
		"ROOM_LIST_RESPONSE|R1,alpha,1,2,JAVA,EASY,alice|R2,beta,2,4,C,HARD,bob",
		RoomListResponse(rooms))
}

func TestLeaderboardEvents(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	entries := []domain.LeaderboardEntry{
		{Username: "alice", Score: 1200, Mode: domain.ModeJava, Difficulty: domain.DifficultyHard, Timestamp: ts},
	}

	assert.Equal(t, "TOP_SCORES|alice,1200,JAVA,HARD,2025-03-14T15:09:26Z", TopScores(entries))
	assert.Equal(t, "USER_RECORDS|alice,1200,JAVA,HARD,2025-03-14T15:09:26Z", UserRecords(entries))
	assert.Equal(t, "TOP_SCORES", TopScores(nil))
}
