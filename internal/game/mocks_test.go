package game

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

// --- WordProvider ---

type MockWordProvider struct {
	mock.Mock
}

func (m *MockWordProvider) Next(mode domain.Mode) domain.Word {
	args := m.Called(mode)
	return args.Get(0).(domain.Word)
}

// --- ScoreRecorder ---

type MockScoreRecorder struct {
	mock.Mock
}

func (m *MockScoreRecorder) AddEntry(username string, score int, mode domain.Mode, diff domain.Difficulty) (int, bool) {
	args := m.Called(username, score, mode, diff)
	return args.Int(0), args.Bool(1)
}

// fakeClient records every delivered line so assertions can inspect the
// full event stream a player saw.
type fakeClient struct {
	id   string
	name string

	mu    sync.Mutex
	lines []string
}

func newFakeClient(id, name string) *fakeClient {
	return &fakeClient{id: id, name: name}
}

func (f *fakeClient) ID() string       { return f.id }
func (f *fakeClient) Username() string { return f.name }

func (f *fakeClient) Send(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

func (f *fakeClient) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func (f *fakeClient) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lines) == 0 {
		return ""
	}
	return f.lines[len(f.lines)-1]
}

func (f *fakeClient) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = nil
}

// fakeHub records global broadcasts.
type fakeHub struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeHub) BroadcastAll(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

func (f *fakeHub) broadcasts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}
