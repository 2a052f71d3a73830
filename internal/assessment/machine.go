// Package assessment runs the scripted career assessment conversation.
package assessment

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ashureev/careercompass/internal/domain"
)

// State is the conversation state.
type State string

const (
	// StateAwaitingInput waits for the next user answer.
	StateAwaitingInput State = "awaiting_input"
	// StateThinking holds while a scripted reply is scheduled.
	StateThinking State = "thinking"
	// StateComplete is terminal; the results redirect has been scheduled.
	StateComplete State = "complete"
)

// Submission rejections. None of them is a failure from the user's point of
// view: the submission is simply ignored.
var (
	ErrEmptyInput = errors.New("input is empty")
	ErrBusy       = errors.New("reply already pending")
	ErrComplete   = errors.New("assessment already complete")
	ErrClosed     = errors.New("assessment closed")
	ErrTooLong    = errors.New("input is too long")
)

// MaxAnswerLength caps an answer in characters, whatever the transport.
const MaxAnswerLength = 4000

// Default delays.
const (
	DefaultThinkDelay    = 1 * time.Second
	DefaultRedirectDelay = 2 * time.Second
)

// Options configures a Machine. Zero values fall back to defaults.
type Options struct {
	RunID         string
	Questions     []string
	ThinkDelay    time.Duration
	RedirectDelay time.Duration
	Scheduler     Scheduler
	Sink          Sink
	Now           func() time.Time
}

// Snapshot is a read-only copy of machine state.
type Snapshot struct {
	RunID      string           `json:"run_id"`
	State      State            `json:"state"`
	Turn       int              `json:"turn"`
	Questions  int              `json:"questions"`
	Progress   float64          `json:"progress"`
	Thinking   bool             `json:"thinking"`
	Complete   bool             `json:"complete"`
	Transcript []domain.Message `json:"transcript"`
	Closing    string           `json:"closing,omitempty"`
	Redirect   string           `json:"redirect,omitempty"`
}

// Machine is the assessment conversation state machine. The turn index is
// kept explicitly and advances only when a scripted reply is appended.
type Machine struct {
	mu sync.Mutex
	// emitMu keeps sink delivery in transition order.
	emitMu sync.Mutex

	runID         string
	questions     []string
	thinkDelay    time.Duration
	redirectDelay time.Duration
	sched         Scheduler
	sink          Sink
	now           func() time.Time

	state      State
	turn       int
	progress   float64
	transcript []domain.Message
	closing    string
	redirect   string

	// pending is the outstanding reply or redirect task, if any.
	pending Task
	// gen invalidates callbacks of tasks that were superseded or cancelled.
	gen    uint64
	closed bool
}

// NewMachine creates a machine in awaiting_input(0) with the opening message
// already in the transcript.
func NewMachine(opts Options) *Machine {
	if len(opts.Questions) == 0 {
		opts.Questions = QuestionBank()
	}
	if opts.ThinkDelay <= 0 {
		opts.ThinkDelay = DefaultThinkDelay
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Sink == nil {
		opts.Sink = discardSink{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Machine{
		runID:         opts.RunID,
		questions:     append([]string(nil), opts.Questions...),
		thinkDelay:    opts.ThinkDelay,
		redirectDelay: opts.RedirectDelay,
		sched:         opts.Scheduler,
		sink:          opts.Sink,
		now:           opts.Now,
		state:         StateAwaitingInput,
	}
	m.transcript = append(m.transcript, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   OpeningMessage,
		CreatedAt: m.now(),
	})
	return m
}

// RunID returns the identifier of this assessment run.
func (m *Machine) RunID() string {
	return m.runID
}

// Submit accepts a user answer. On success the answer is appended and a
// scripted reply is scheduled after the think delay.
func (m *Machine) Submit(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(input) > MaxAnswerLength {
		return ErrTooLong
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.state == StateComplete:
		m.mu.Unlock()
		return ErrComplete
	case m.state == StateThinking:
		m.mu.Unlock()
		return ErrBusy
	}

	msg := domain.Message{Role: domain.RoleUser, Content: input, CreatedAt: m.now()}
	m.transcript = append(m.transcript, msg)
	m.state = StateThinking
	m.gen++
	gen := m.gen
	m.pending = m.sched.AfterFunc(m.thinkDelay, func() { m.reply(gen) })

	events := []Event{
		m.eventLocked(EventMessage, func(ev *Event) { ev.Message = &msg }),
		m.eventLocked(EventThinking, nil),
	}
	m.unlockAndEmit(events)
	return nil
}

// reply appends the scripted reply for the current turn.
func (m *Machine) reply(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen || m.state != StateThinking {
		m.mu.Unlock()
		return
	}
	m.pending = nil

	var events []Event
	if m.turn < len(m.questions) {
		msg := m.appendAssistantLocked(m.questions[m.turn])
		m.turn++
		m.setProgressLocked(float64(m.turn*100) / float64(len(m.questions)))
		events = append(events,
			m.eventLocked(EventMessage, func(ev *Event) { ev.Message = &msg }),
			m.eventLocked(EventProgress, nil),
		)
	} else {
		// Unreachable while completion follows the last question, but keeps
		// the turn == N transition total.
		msg := m.appendAssistantLocked(ClosingMessage)
		m.setProgressLocked(100)
		events = append(events,
			m.eventLocked(EventMessage, func(ev *Event) { ev.Message = &msg }),
			m.eventLocked(EventProgress, nil),
		)
	}

	if m.progress >= 100 {
		events = append(events, m.completeLocked())
	} else {
		m.state = StateAwaitingInput
	}
	m.unlockAndEmit(events)
}

func (m *Machine) completeLocked() Event {
	m.state = StateComplete
	m.closing = ClosingMessage
	m.gen++
	gen := m.gen
	m.pending = m.sched.AfterFunc(m.redirectDelay, func() { m.finish(gen) })
	return m.eventLocked(EventComplete, func(ev *Event) { ev.Notice = ClosingMessage })
}

// finish issues the single results redirect.
func (m *Machine) finish(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen || m.redirect != "" {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.redirect = ResultsPath
	events := []Event{
		m.eventLocked(EventNotify, func(ev *Event) { ev.Notice = CompletionNotice }),
		m.eventLocked(EventNavigate, func(ev *Event) { ev.Path = ResultsPath }),
	}
	m.unlockAndEmit(events)
}

// Close cancels any pending reply or redirect. The machine rejects all
// further submissions.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		RunID:      m.runID,
		State:      m.state,
		Turn:       m.turn,
		Questions:  len(m.questions),
		Progress:   m.progress,
		Thinking:   m.state == StateThinking,
		Complete:   m.state == StateComplete,
		Transcript: append([]domain.Message(nil), m.transcript...),
		Closing:    m.closing,
		Redirect:   m.redirect,
	}
}

func (m *Machine) appendAssistantLocked(content string) domain.Message {
	msg := domain.Message{Role: domain.RoleAssistant, Content: content, CreatedAt: m.now()}
	m.transcript = append(m.transcript, msg)
	return msg
}

// setProgressLocked never lets progress go down.
func (m *Machine) setProgressLocked(p float64) {
	if p > 100 {
		p = 100
	}
	if p > m.progress {
		m.progress = p
	}
}

func (m *Machine) eventLocked(t EventType, fill func(*Event)) Event {
	ev := Event{Type: t, RunID: m.runID, Progress: m.progress, At: m.now()}
	if fill != nil {
		fill(&ev)
	}
	return ev
}

// unlockAndEmit releases mu and delivers events. emitMu is taken before mu
// is released so deliveries from consecutive transitions cannot interleave.
func (m *Machine) unlockAndEmit(events []Event) {
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()
	for _, ev := range events {
		m.sink.Emit(ev)
	}
}

// RejectReason maps a Submit rejection onto a stable wire code.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrTooLong):
		return "too_long"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrComplete):
		return "complete"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "rejected"
	}
}
