package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/core/model"
	"deepwork/internal/core/presence"
)

var sessionStart = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

// newTestSession builds a session primed at sessionStart without launching
// the ticker goroutine, so tests drive tick and Observe with synthetic times.
func newTestSession(total, grace time.Duration) *Session {
	s := New(model.SessionConfig{TotalDuration: total, GracePeriod: grace}, Config{})
	s.running = true
	s.lastTickAt = sessionStart
	s.lastPresenceAt = sessionStart
	return s
}

func at(seconds int) time.Time {
	return sessionStart.Add(time.Duration(seconds) * time.Second)
}

func presentAt(seconds int) presence.Sample {
	return presence.Sample{At: at(seconds), Confidence: 85, Present: true}
}

func absentAt(seconds int) presence.Sample {
	return presence.Sample{At: at(seconds), Confidence: 4, Present: false}
}

func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func stateChanges(events []Event, status Status) int {
	count := 0
	for _, event := range events {
		if event.Type == EventStateChange && event.Status == status {
			count++
		}
	}
	return count
}

func TestPauseRequiresFullGracePeriod(t *testing.T) {
	s := newTestSession(2*time.Minute, 5*time.Second)
	ch := s.Subscribe(32)

	s.Observe(absentAt(56))
	assert.Equal(t, StatusRunning, s.Snapshot().Status, "first absent sample only starts the grace window")

	s.Observe(absentAt(60))
	assert.Equal(t, StatusRunning, s.Snapshot().Status, "4s of absence is inside the grace window")

	s.Observe(absentAt(61))
	snap := s.Snapshot()
	require.Equal(t, StatusPaused, snap.Status)

	events := drain(ch)
	assert.Equal(t, 1, stateChanges(events, StatusPaused))
	assert.Equal(t, 0, stateChanges(events, StatusCompleted))
}

func TestPauseTriggersExactlyAtGraceBoundary(t *testing.T) {
	s := newTestSession(2*time.Minute, 5*time.Second)

	s.Observe(absentAt(10))
	s.Observe(absentAt(15))

	assert.Equal(t, StatusPaused, s.Snapshot().Status, "absence duration equal to the grace period pauses")
}

func TestSinglePresentSampleResumes(t *testing.T) {
	s := newTestSession(2*time.Minute, 5*time.Second)
	ch := s.Subscribe(32)

	s.Observe(absentAt(10))
	s.Observe(absentAt(15))
	require.Equal(t, StatusPaused, s.Snapshot().Status)

	s.Observe(presentAt(20))
	snap := s.Snapshot()
	assert.Equal(t, StatusRunning, snap.Status)
	assert.True(t, snap.AbsenceStartedAt.IsZero(), "present sample clears the absence run")
	assert.Equal(t, at(20), snap.LastPresenceAt)

	events := drain(ch)
	assert.Equal(t, 1, stateChanges(events, StatusPaused))
	assert.Equal(t, 1, stateChanges(events, StatusRunning))
}

func TestRemainingFrozenWhilePausedAndNotChargedOnResume(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)

	// Pausing at t=15 credits the 15s that ran before the freeze.
	s.Observe(absentAt(10))
	s.Observe(absentAt(15))
	require.Equal(t, StatusPaused, s.Snapshot().Status)
	require.Equal(t, 45*time.Second, s.Snapshot().Remaining)

	s.tick(at(16))
	s.tick(at(17))
	assert.Equal(t, 45*time.Second, s.Snapshot().Remaining, "remaining is frozen while paused")

	s.Observe(presentAt(20))
	s.tick(at(21))
	assert.Equal(t, 44*time.Second, s.Snapshot().Remaining, "only time after the resume counts")
}

func TestRemainingNeverIncreasesWhileRunning(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)

	previous := s.Snapshot().Remaining
	for second := 1; second <= 59; second++ {
		s.tick(at(second))
		current := s.Snapshot().Remaining
		require.LessOrEqual(t, current, previous, "tick at t=%d", second)
		previous = current
	}
	assert.Equal(t, time.Second, previous)
}

func TestCompletesExactlyOnceAtZero(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)
	ch := s.Subscribe(128)

	for second := 1; second <= 59; second++ {
		require.False(t, s.tick(at(second)), "tick at t=%d must not complete", second)
	}
	require.True(t, s.tick(at(60)))

	snap := s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, time.Duration(0), snap.Remaining)

	// Further ticks and samples are no-ops on a completed session.
	assert.True(t, s.tick(at(61)))
	s.Observe(absentAt(65))
	s.Observe(presentAt(70))
	assert.Equal(t, StatusCompleted, s.Snapshot().Status)
	assert.Equal(t, time.Duration(0), s.Snapshot().Remaining)

	events := drain(ch)
	assert.Equal(t, 1, stateChanges(events, StatusCompleted))
}

func TestBriefAbsenceWithinGraceNeverPauses(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)
	ch := s.Subscribe(32)

	s.Observe(absentAt(0))
	s.tick(at(1))
	s.tick(at(2))
	s.Observe(absentAt(3))
	s.Observe(presentAt(4))
	for second := 5; second <= 10; second++ {
		s.tick(at(second))
	}

	assert.Equal(t, StatusRunning, s.Snapshot().Status)
	assert.Equal(t, 0, stateChanges(drain(ch), StatusPaused))
}

func TestPresentSampleRestartsGraceWindow(t *testing.T) {
	s := newTestSession(2*time.Minute, 5*time.Second)

	s.Observe(absentAt(10))
	s.Observe(presentAt(13))
	s.Observe(absentAt(14))
	s.Observe(absentAt(18))
	assert.Equal(t, StatusRunning, s.Snapshot().Status, "absence run restarted at t=14")

	s.Observe(absentAt(19))
	assert.Equal(t, StatusPaused, s.Snapshot().Status)
}

func TestCompletionWinsWhenCountdownDrainsBeforePause(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)
	ch := s.Subscribe(32)

	s.Observe(absentAt(56))
	s.Observe(absentAt(61))

	snap := s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, time.Duration(0), snap.Remaining)

	events := drain(ch)
	assert.Equal(t, 1, stateChanges(events, StatusCompleted))
	assert.Equal(t, 0, stateChanges(events, StatusPaused))
}

func TestClockJumpClampsRemainingAtZero(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)

	require.True(t, s.tick(at(90)))

	snap := s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, time.Duration(0), snap.Remaining)
}

func TestBackwardClockSkewDoesNotIncreaseRemaining(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)

	s.tick(at(10))
	require.Equal(t, 50*time.Second, s.Snapshot().Remaining)

	s.tick(at(8))
	assert.Equal(t, 50*time.Second, s.Snapshot().Remaining)

	s.tick(at(9))
	assert.Equal(t, 49*time.Second, s.Snapshot().Remaining)
}

func TestSetGracePeriodAppliesToRunningSession(t *testing.T) {
	s := newTestSession(2*time.Minute, 5*time.Second)
	s.SetGracePeriod(10 * time.Second)

	s.Observe(absentAt(0))
	s.Observe(absentAt(5))
	assert.Equal(t, StatusRunning, s.Snapshot().Status)

	s.Observe(absentAt(10))
	assert.Equal(t, StatusPaused, s.Snapshot().Status)
}

func TestSubscribeBufferedEmitNeverBlocks(t *testing.T) {
	s := newTestSession(time.Minute, 5*time.Second)
	ch := s.Subscribe(1)

	// Second tick's event is dropped instead of blocking the state machine.
	s.tick(at(1))
	s.tick(at(2))

	events := drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, EventProgress, events[0].Type)
	assert.Equal(t, 59*time.Second, events[0].Remaining)
}

func TestStartEmitsInitialStateAndStopClosesObservers(t *testing.T) {
	s := New(model.SessionConfig{TotalDuration: time.Minute, GracePeriod: 5 * time.Second}, Config{})
	ch := s.Subscribe(8)

	s.Start()
	event := <-ch
	assert.Equal(t, EventStateChange, event.Type)
	assert.Equal(t, StatusRunning, event.Status)
	assert.Equal(t, time.Minute, event.Remaining)

	s.Stop()
	drain(ch)
	_, open := <-ch
	assert.False(t, open, "Stop closes observer channels")

	// Stop is idempotent.
	s.Stop()
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(model.SessionConfig{TotalDuration: time.Minute}, Config{})

	assert.Equal(t, 5*time.Second, s.config.GracePeriod)
	assert.Equal(t, time.Second, s.options.TickInterval)
	assert.Equal(t, StatusRunning, s.status)
	assert.Equal(t, time.Minute, s.remaining)
}
