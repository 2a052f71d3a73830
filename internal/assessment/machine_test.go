package assessment

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/careercompass/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testThink    = time.Second
	testRedirect = 2 * time.Second
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recordingSink) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func newTestMachine() (*Machine, *ManualScheduler, *recordingSink) {
	sched := NewManualScheduler()
	sink := &recordingSink{}
	m := NewMachine(Options{
		RunID:         "run-1",
		ThinkDelay:    testThink,
		RedirectDelay: testRedirect,
		Scheduler:     sched,
		Sink:          sink,
	})
	return m, sched, sink
}

func answer(t *testing.T, m *Machine, sched *ManualScheduler, input string) {
	t.Helper()
	require.NoError(t, m.Submit(input))
	sched.Advance(testThink)
}

func assistantCount(snap Snapshot) int {
	n := 0
	for _, msg := range snap.Transcript {
		if msg.Role == domain.RoleAssistant {
			n++
		}
	}
	return n
}

func TestMachine_InitialState(t *testing.T) {
	m, _, _ := newTestMachine()
	snap := m.Snapshot()

	assert.Equal(t, StateAwaitingInput, snap.State)
	assert.Equal(t, 0, snap.Turn)
	assert.Equal(t, len(QuestionBank()), snap.Questions)
	assert.Zero(t, snap.Progress)
	require.Len(t, snap.Transcript, 1)
	assert.Equal(t, domain.RoleAssistant, snap.Transcript[0].Role)
	assert.Equal(t, OpeningMessage, snap.Transcript[0].Content)
}

func TestMachine_FirstAnswerGetsFirstQuestion(t *testing.T) {
	m, sched, sink := newTestMachine()

	require.NoError(t, m.Submit("I'm a student"))
	snap := m.Snapshot()
	assert.True(t, snap.Thinking)
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, domain.RoleUser, snap.Transcript[1].Role)
	assert.Equal(t, "I'm a student", snap.Transcript[1].Content)
	assert.Equal(t, 1, sink.count(EventThinking))

	sched.Advance(testThink)

	snap = m.Snapshot()
	require.Len(t, snap.Transcript, 3)
	assert.Equal(t, QuestionBank()[0], snap.Transcript[2].Content)
	assert.Equal(t, StateAwaitingInput, snap.State)
	assert.InDelta(t, 20.0, snap.Progress, 1e-9)
}

func TestMachine_ProgressIsFunctionOfAcceptedSubmissions(t *testing.T) {
	m, sched, _ := newTestMachine()
	n := len(QuestionBank())

	prev := m.Snapshot().Progress
	for k := 1; k <= n; k++ {
		answer(t, m, sched, "answer")
		snap := m.Snapshot()
		want := float64(k) / float64(n) * 100
		assert.InDelta(t, want, snap.Progress, 1e-9, "after %d submissions", k)
		assert.GreaterOrEqual(t, snap.Progress, prev)
		prev = snap.Progress
	}
}

func TestMachine_AllQuestionsCompletesAssessment(t *testing.T) {
	m, sched, sink := newTestMachine()
	n := len(QuestionBank())

	for i := 0; i < n; i++ {
		answer(t, m, sched, "answer")
	}

	snap := m.Snapshot()
	assert.Equal(t, n+1, assistantCount(snap))
	assert.InDelta(t, 100.0, snap.Progress, 1e-9)
	assert.True(t, snap.Complete)
	assert.Equal(t, ClosingMessage, snap.Closing)
	assert.Empty(t, snap.Redirect)
	assert.Equal(t, 1, sink.count(EventComplete))
	assert.Equal(t, 0, sink.count(EventNavigate))
}

func TestMachine_RejectsSubmissionsAfterCompletion(t *testing.T) {
	m, sched, _ := newTestMachine()
	for i := 0; i < len(QuestionBank()); i++ {
		answer(t, m, sched, "answer")
	}
	before := m.Snapshot()

	err := m.Submit("one more thing")
	require.ErrorIs(t, err, ErrComplete)

	after := m.Snapshot()
	assert.Len(t, after.Transcript, len(before.Transcript))
	assert.Equal(t, before.Progress, after.Progress)
}

func TestMachine_RedirectIssuedExactlyOnce(t *testing.T) {
	m, sched, sink := newTestMachine()
	for i := 0; i < len(QuestionBank()); i++ {
		answer(t, m, sched, "answer")
	}

	sched.Advance(testRedirect - time.Millisecond)
	assert.Equal(t, 0, sink.count(EventNavigate))

	sched.Advance(time.Millisecond)
	sched.Advance(time.Minute)

	assert.Equal(t, 1, sink.count(EventNavigate))
	assert.Equal(t, 1, sink.count(EventNotify))
	nav, ok := sink.last(EventNavigate)
	require.True(t, ok)
	assert.Equal(t, ResultsPath, nav.Path)
	notice, ok := sink.last(EventNotify)
	require.True(t, ok)
	assert.Equal(t, CompletionNotice, notice.Notice)
	assert.Equal(t, ResultsPath, m.Snapshot().Redirect)
}

func TestMachine_IgnoresBlankInput(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  "} {
		m, sched, sink := newTestMachine()

		err := m.Submit(input)
		require.ErrorIs(t, err, ErrEmptyInput)
		sched.Advance(time.Minute)

		snap := m.Snapshot()
		assert.Len(t, snap.Transcript, 1)
		assert.Zero(t, snap.Progress)
		assert.Empty(t, sink.events)
		assert.Zero(t, sched.Pending())
	}
}

func TestMachine_RejectsInputWhileThinking(t *testing.T) {
	m, sched, _ := newTestMachine()

	require.NoError(t, m.Submit("first"))
	require.ErrorIs(t, m.Submit("second"), ErrBusy)
	assert.Len(t, m.Snapshot().Transcript, 2)

	sched.Advance(testThink)
	snap := m.Snapshot()
	assert.Len(t, snap.Transcript, 3)
	assert.Equal(t, 2, assistantCount(snap))
}

func TestMachine_KeepsUntrimmedInput(t *testing.T) {
	m, _, _ := newTestMachine()
	require.NoError(t, m.Submit("  padded  "))
	assert.Equal(t, "  padded  ", m.Snapshot().Transcript[1].Content)
}

func TestMachine_CloseCancelsPendingReply(t *testing.T) {
	m, sched, sink := newTestMachine()

	require.NoError(t, m.Submit("hello"))
	m.Close()
	sched.Advance(time.Minute)

	snap := m.Snapshot()
	assert.Len(t, snap.Transcript, 2)
	assert.Zero(t, snap.Progress)
	assert.Zero(t, sched.Pending())
	assert.Equal(t, 0, sink.count(EventProgress))
	require.ErrorIs(t, m.Submit("again"), ErrClosed)
}

func TestMachine_CloseCancelsPendingRedirect(t *testing.T) {
	m, sched, sink := newTestMachine()
	for i := 0; i < len(QuestionBank()); i++ {
		answer(t, m, sched, "answer")
	}

	m.Close()
	sched.Advance(time.Minute)

	assert.Equal(t, 0, sink.count(EventNavigate))
	assert.Empty(t, m.Snapshot().Redirect)
}

func TestMachine_CustomQuestions(t *testing.T) {
	sched := NewManualScheduler()
	m := NewMachine(Options{
		Questions:     []string{"only one?"},
		ThinkDelay:    testThink,
		RedirectDelay: testRedirect,
		Scheduler:     sched,
	})

	answer(t, m, sched, "sure")
	snap := m.Snapshot()
	assert.True(t, snap.Complete)
	assert.Equal(t, "only one?", snap.Transcript[2].Content)
	assert.InDelta(t, 100.0, snap.Progress, 1e-9)
}

func TestMachine_EventsCarryRunID(t *testing.T) {
	m, sched, sink := newTestMachine()
	answer(t, m, sched, "hi")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.NotEmpty(t, sink.events)
	for _, ev := range sink.events {
		assert.Equal(t, "run-1", ev.RunID)
	}
}

func TestMachine_TimerScheduler(t *testing.T) {
	sink := &recordingSink{}
	m := NewMachine(Options{
		ThinkDelay:    5 * time.Millisecond,
		RedirectDelay: 5 * time.Millisecond,
		Sink:          sink,
	})
	defer m.Close()

	require.NoError(t, m.Submit("real timers"))
	require.Eventually(t, func() bool {
		return sink.count(EventProgress) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, QuestionBank()[0], m.Snapshot().Transcript[2].Content)
}

func TestRejectReason(t *testing.T) {
	tests := map[error]string{
		ErrEmptyInput:                         "empty_input",
		ErrBusy:                               "busy",
		ErrComplete:                           "complete",
		ErrClosed:                             "closed",
		ErrTooLong:                            "too_long",
		fmt.Errorf("submit: %w", ErrBusy):     "busy",
		errors.New("something else entirely"): "rejected",
	}
	for err, want := range tests {
		assert.Equal(t, want, RejectReason(err), err.Error())
	}
}

func TestMachine_RejectsOverlongInput(t *testing.T) {
	m, sched, _ := newTestMachine()

	require.ErrorIs(t, m.Submit(strings.Repeat("a", MaxAnswerLength+1)), ErrTooLong)
	assert.Len(t, m.Snapshot().Transcript, 1)
	assert.Zero(t, sched.Pending())

	// The cap counts characters, not bytes.
	require.NoError(t, m.Submit(strings.Repeat("é", MaxAnswerLength)))
}
