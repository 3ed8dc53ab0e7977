package session

import (
	"sync"
	"time"

	"deepwork/internal/core/model"
	"deepwork/internal/core/presence"
)

// Config contains runtime options for Session.
type Config struct {
	TickInterval time.Duration
}

// Session is a state machine that runs one presence-gated focus countdown.
// An internal ticker drives the countdown while presence samples arriving
// through Observe decide whether the countdown is running or paused.
type Session struct {
	mu               sync.Mutex
	config           model.SessionConfig
	options          Config
	status           Status
	remaining        time.Duration
	lastConfidence   float64
	lastPresenceAt   time.Time
	absenceStartedAt time.Time
	lastTickAt       time.Time
	events           []chan Event
	stopCh           chan struct{}
	running          bool
}

// Snapshot is a point-in-time copy of the observable session state.
type Snapshot struct {
	Status           Status
	Total            time.Duration
	Remaining        time.Duration
	LastPresenceAt   time.Time
	AbsenceStartedAt time.Time
}

// New creates a Session with the provided configuration.
func New(config model.SessionConfig, options Config) *Session {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = 5 * time.Second
	}

	return &Session{
		config:    config,
		options:   options,
		status:    StatusRunning,
		remaining: config.TotalDuration,
		stopCh:    make(chan struct{}),
	}
}

// Subscribe registers a new observer channel.
func (session *Session) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	session.mu.Lock()
	session.events = append(session.events, ch)
	session.mu.Unlock()
	return ch
}

// Start launches the countdown loop.
func (session *Session) Start() {
	session.mu.Lock()
	if session.running || session.status == StatusCompleted {
		session.mu.Unlock()
		return
	}
	now := time.Now()
	session.running = true
	session.status = StatusRunning
	session.remaining = session.config.TotalDuration
	session.lastTickAt = now
	session.lastPresenceAt = now
	session.absenceStartedAt = time.Time{}
	session.mu.Unlock()

	session.emit(Event{
		Type:      EventStateChange,
		Status:    StatusRunning,
		Remaining: session.config.TotalDuration,
		At:        now,
	})

	go session.run()
}

// Stop terminates the countdown loop and closes observers.
func (session *Session) Stop() {
	session.mu.Lock()
	if !session.running {
		session.mu.Unlock()
		return
	}
	close(session.stopCh)
	session.running = false
	events := session.events
	session.events = nil
	session.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Observe feeds one presence sample into the state machine. Samples arriving
// after completion are ignored.
func (session *Session) Observe(sample presence.Sample) {
	session.mu.Lock()
	if session.status == StatusCompleted {
		session.mu.Unlock()
		return
	}
	session.lastConfidence = sample.Confidence

	if sample.Present {
		session.handlePresentLocked(sample)
	} else {
		session.handleAbsentLocked(sample)
	}
	session.mu.Unlock()
}

// SetGracePeriod adjusts the absence grace period while the session runs.
func (session *Session) SetGracePeriod(grace time.Duration) {
	if grace <= 0 {
		return
	}
	session.mu.Lock()
	session.config.GracePeriod = grace
	session.mu.Unlock()
}

// Snapshot returns a copy of the current session state.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Snapshot{
		Status:           session.status,
		Total:            session.config.TotalDuration,
		Remaining:        session.remaining,
		LastPresenceAt:   session.lastPresenceAt,
		AbsenceStartedAt: session.absenceStartedAt,
	}
}

func (session *Session) run() {
	ticker := time.NewTicker(session.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-session.stopCh:
			return
		case tickTime := <-ticker.C:
			if session.tick(tickTime) {
				return
			}
		}
	}
}

// tick advances the countdown by the wall-clock time elapsed since the
// previous tick. It reports true once the session has completed.
func (session *Session) tick(tickTime time.Time) bool {
	session.mu.Lock()
	if !session.running || session.status == StatusCompleted {
		session.mu.Unlock()
		return true
	}

	if session.advanceLocked(tickTime) {
		session.emitLocked(session.completedEventLocked(tickTime))
		session.mu.Unlock()
		return true
	}

	session.emitLocked(session.progressEventLocked(tickTime))
	session.mu.Unlock()
	return false
}

func (session *Session) handlePresentLocked(sample presence.Sample) {
	session.lastPresenceAt = sample.At
	session.absenceStartedAt = time.Time{}

	if session.status != StatusPaused {
		return
	}
	session.status = StatusRunning
	session.lastTickAt = sample.At
	session.emitLocked(Event{
		Type:       EventStateChange,
		Status:     StatusRunning,
		Remaining:  session.remaining,
		Progress:   session.progressLocked(),
		Confidence: sample.Confidence,
		At:         sample.At,
	})
}

func (session *Session) handleAbsentLocked(sample presence.Sample) {
	if session.absenceStartedAt.IsZero() {
		session.absenceStartedAt = sample.At
		return
	}
	if session.status != StatusRunning {
		return
	}
	if sample.At.Sub(session.absenceStartedAt) < session.config.GracePeriod {
		return
	}

	// Credit the running time up to this sample before freezing. If that
	// drains the countdown the session completes instead of pausing.
	if session.advanceLocked(sample.At) {
		session.emitLocked(session.completedEventLocked(sample.At))
		return
	}
	session.status = StatusPaused
	session.emitLocked(Event{
		Type:       EventStateChange,
		Status:     StatusPaused,
		Remaining:  session.remaining,
		Progress:   session.progressLocked(),
		Confidence: sample.Confidence,
		At:         sample.At,
	})
}

// advanceLocked moves the countdown clock to now, decrementing remaining
// only while the session is running. It reports true when the countdown
// reaches zero and the session transitions to completed.
func (session *Session) advanceLocked(now time.Time) bool {
	elapsed := now.Sub(session.lastTickAt)
	session.lastTickAt = now

	if session.status != StatusRunning || elapsed <= 0 {
		return false
	}

	session.remaining -= elapsed
	if session.remaining > 0 {
		return false
	}
	session.remaining = 0
	session.status = StatusCompleted
	return true
}

func (session *Session) progressLocked() float64 {
	total := session.config.TotalDuration
	if total <= 0 {
		return 1
	}
	progress := float64(total-session.remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (session *Session) progressEventLocked(now time.Time) Event {
	return Event{
		Type:       EventProgress,
		Status:     session.status,
		Remaining:  session.remaining,
		Progress:   session.progressLocked(),
		Confidence: session.lastConfidence,
		At:         now,
	}
}

func (session *Session) completedEventLocked(now time.Time) Event {
	return Event{
		Type:       EventStateChange,
		Status:     StatusCompleted,
		Remaining:  0,
		Progress:   1,
		Confidence: session.lastConfidence,
		At:         now,
	}
}

func (session *Session) emit(event Event) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.emitLocked(event)
}

func (session *Session) emitLocked(event Event) {
	events := append([]chan Event(nil), session.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
