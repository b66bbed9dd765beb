package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// PollState is the scheduler state derived from the current session.
type PollState string

const (
	PollIdle            PollState = "idle"
	PollWaitingOpponent PollState = "waiting-opponent"
	PollWaitingSetup    PollState = "waiting-setup"
	PollActiveMyTurn    PollState = "active-my-turn"
	PollCompleted       PollState = "completed"
)

// Polls reports whether the state refreshes periodically.
func (s PollState) Polls() bool {
	switch s {
	case PollIdle, PollWaitingOpponent, PollWaitingSetup:
		return true
	default:
		return false
	}
}

// DerivePollState maps a session to its scheduler state.
func DerivePollState(session *domain.GameSession) PollState {
	switch {
	case session == nil:
		return PollIdle
	case session.Completed():
		return PollCompleted
	case session.IsMyTurn():
		return PollActiveMyTurn
	case session.Phase == domain.PhaseSetup:
		return PollWaitingSetup
	default:
		return PollWaitingOpponent
	}
}

type pollScheduler struct {
	state   PollState
	timer   Timer
	backoff *backoff.ExponentialBackOff
	delay   time.Duration
	// retry keeps the timer running after a failed refresh so a stale
	// snapshot is replaced even in non-polling states.
	retry bool
}

func (p *pollScheduler) stop() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// record updates the next delay from a refresh outcome. Only network
// failures grow the delay.
func (p *pollScheduler) record(err error, base time.Duration) {
	switch {
	case err == nil:
		p.backoff.Reset()
		p.delay = base
		p.retry = false
	case apperrors.CodeOf(err).Retryable():
		p.delay = p.backoff.NextBackOff()
		p.retry = true
	default:
		p.delay = base
		p.retry = true
	}
}

// PollState returns the current scheduler state.
func (e *Engine) PollState() PollState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poll.state
}

// PollDelay returns the delay before the next scheduled refresh.
func (e *Engine) PollDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poll.delay
}

// schedulePollLocked starts or cancels the periodic refresh for the
// current state. A pending timer is kept so repeated calls do not reset
// the cadence.
func (e *Engine) schedulePollLocked() {
	if e.closed {
		e.poll.stop()
		return
	}
	wanted := e.poll.state.Polls() || (e.poll.retry && e.poll.state != PollCompleted)
	if !wanted {
		e.poll.stop()
		return
	}
	if e.poll.timer != nil {
		return
	}
	e.poll.timer = e.opts.Clock.AfterFunc(e.poll.delay, e.pollTick)
}

func (e *Engine) pollTick() {
	e.mu.Lock()
	e.poll.timer = nil
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(e.ctx, e.opts.RequestTimeout)
	defer cancel()
	if _, err := e.Refresh(ctx); err != nil && err != ErrClosed {
		e.opts.Logf("poll %s %s: %v", e.adapter.Variant(), e.gameID, err)
	}
}

// VisibilityRegained refreshes once immediately, whatever the poll state.
// The periodic cadence is unchanged.
func (e *Engine) VisibilityRegained(ctx context.Context) error {
	_, err := e.Refresh(ctx)
	return err
}
