package assessment

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/careercompass/internal/metrics"
	"github.com/google/uuid"
)

// Publisher receives events for a user's tab session.
type Publisher interface {
	Publish(userID, sessionID string, ev Event)
}

// ManagerConfig configures the machines a Manager creates.
type ManagerConfig struct {
	ThinkDelay    time.Duration
	RedirectDelay time.Duration
	Scheduler     Scheduler
}

type runEntry struct {
	machine  *Machine
	lastSeen time.Time
}

// Manager holds one assessment run per user and tab session. Runs live in
// memory only.
type Manager struct {
	mu   sync.Mutex
	runs map[string]*runEntry
	cfg  ManagerConfig
	pub  Publisher
	now  func() time.Time
}

// NewManager creates a run manager. pub may be nil.
func NewManager(cfg ManagerConfig, pub Publisher) *Manager {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	return &Manager{
		runs: make(map[string]*runEntry),
		cfg:  cfg,
		pub:  pub,
		now:  time.Now,
	}
}

func runKey(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// Start begins a fresh run, replacing and closing any existing one.
func (m *Manager) Start(userID, sessionID string) Snapshot {
	return m.start(userID, sessionID).Snapshot()
}

func (m *Manager) start(userID, sessionID string) *Machine {
	m.mu.Lock()
	key := runKey(userID, sessionID)
	old := m.runs[key]
	machine := m.newMachine(userID, sessionID)
	m.runs[key] = &runEntry{machine: machine, lastSeen: m.now()}
	active := len(m.runs)
	m.mu.Unlock()

	if old != nil {
		old.machine.Close()
	}
	metrics.AssessmentsStarted.Inc()
	metrics.AssessmentsActive.Set(float64(active))
	slog.Info("Assessment started", "user_id", userID, "session_id", sessionID, "run_id", machine.RunID(), "restart", old != nil)
	return machine
}

// Current returns the snapshot of the active run, starting one if needed.
// A run whose results redirect has been issued is finished and is replaced
// by a fresh one.
func (m *Manager) Current(userID, sessionID string) Snapshot {
	if machine := m.touch(userID, sessionID); machine != nil {
		if snap := machine.Snapshot(); snap.Redirect == "" {
			return snap
		}
	}
	return m.Start(userID, sessionID)
}

// Submit forwards an answer to the active run, starting one if needed.
// Rejections (ErrEmptyInput, ErrTooLong, ErrBusy, ErrComplete, ErrClosed)
// leave state unchanged.
func (m *Manager) Submit(userID, sessionID, input string) (Snapshot, error) {
	machine := m.touch(userID, sessionID)
	if machine == nil {
		machine = m.start(userID, sessionID)
	}

	err := machine.Submit(input)
	metrics.AssessmentSubmissions.WithLabelValues(submissionOutcome(err)).Inc()
	return machine.Snapshot(), err
}

func submissionOutcome(err error) string {
	if err == nil {
		return "accepted"
	}
	return RejectReason(err)
}

// End closes and forgets the active run. It reports whether one existed.
func (m *Manager) End(userID, sessionID string) bool {
	m.mu.Lock()
	key := runKey(userID, sessionID)
	entry, ok := m.runs[key]
	delete(m.runs, key)
	active := len(m.runs)
	m.mu.Unlock()

	if !ok {
		return false
	}
	entry.machine.Close()
	metrics.AssessmentsActive.Set(float64(active))
	slog.Info("Assessment ended", "user_id", userID, "session_id", sessionID, "run_id", entry.machine.RunID())
	return true
}

// EndRun ends the active run only if it is still runID, so a connection
// leaving late cannot end a run another connection started.
func (m *Manager) EndRun(userID, sessionID, runID string) bool {
	m.mu.Lock()
	key := runKey(userID, sessionID)
	entry, ok := m.runs[key]
	if !ok || entry.machine.RunID() != runID {
		m.mu.Unlock()
		return false
	}
	delete(m.runs, key)
	active := len(m.runs)
	m.mu.Unlock()

	entry.machine.Close()
	metrics.AssessmentsActive.Set(float64(active))
	slog.Info("Assessment abandoned", "user_id", userID, "session_id", sessionID, "run_id", runID)
	return true
}

// SweepIdle closes runs not touched within ttl and returns how many.
func (m *Manager) SweepIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []*Machine
	for key, entry := range m.runs {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.machine)
			delete(m.runs, key)
		}
	}
	active := len(m.runs)
	m.mu.Unlock()

	for _, machine := range expired {
		machine.Close()
	}
	metrics.AssessmentsActive.Set(float64(active))
	return len(expired)
}

// Len returns the number of runs held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// CloseAll cancels every run. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	runs := m.runs
	m.runs = make(map[string]*runEntry)
	m.mu.Unlock()

	for _, entry := range runs {
		entry.machine.Close()
	}
	metrics.AssessmentsActive.Set(0)
}

func (m *Manager) touch(userID, sessionID string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.runs[runKey(userID, sessionID)]
	if !ok {
		return nil
	}
	entry.lastSeen = m.now()
	return entry.machine
}

func (m *Manager) newMachine(userID, sessionID string) *Machine {
	return NewMachine(Options{
		RunID:         uuid.NewString(),
		ThinkDelay:    m.cfg.ThinkDelay,
		RedirectDelay: m.cfg.RedirectDelay,
		Scheduler:     m.cfg.Scheduler,
		Sink: SinkFunc(func(ev Event) {
			if ev.Type == EventComplete {
				metrics.AssessmentsCompleted.Inc()
				slog.Info("Assessment complete", "user_id", userID, "session_id", sessionID, "run_id", ev.RunID)
			}
			if m.pub != nil {
				m.pub.Publish(userID, sessionID, ev)
			}
		}),
	})
}
