package engine

import (
	"context"

	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Refresh loads the authoritative state and replaces the snapshot. On
// success the provisional move is reset and any preview canceled, in the
// same critical section as the replacement. Concurrent calls are allowed;
// the last completion wins. Completions after Close are discarded.
func (e *Engine) Refresh(ctx context.Context) (domain.GameSession, error) {
	return e.refresh(ctx, false)
}

// refresh is Refresh with the option to keep a move the new snapshot still
// accepts, used after a failed submission.
func (e *Engine) refresh(ctx context.Context, keepMove bool) (domain.GameSession, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.GameSession{}, ErrClosed
	}
	e.mu.Unlock()

	session, err := e.load(ctx)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.GameSession{}, ErrClosed
	}
	e.poll.record(err, e.opts.PollInterval)
	if err != nil {
		e.syncErr = err
		e.schedulePollLocked()
		e.mu.Unlock()
		e.notify()
		return domain.GameSession{}, err
	}
	e.applyLocked(session, keepMove)
	e.mu.Unlock()
	e.notify()
	return session, nil
}

func (e *Engine) load(ctx context.Context) (domain.GameSession, error) {
	raw, err := e.authority.GetState(ctx, e.adapter.Route(), e.gameID)
	if err != nil {
		return domain.GameSession{}, err
	}
	return e.adapter.DecodeState(raw, e.opts.LocalUserID)
}

func (e *Engine) applyLocked(session domain.GameSession, keepMove bool) {
	e.session = &session
	e.syncErr = nil
	e.arrangement = nil
	if e.submitting {
		// The move is frozen until the submission settles.
		e.resetDeferred = true
	} else {
		e.settleMoveLocked(keepMove)
	}

	e.poll.state = DerivePollState(e.session)
	if !e.poll.state.Polls() {
		// Leaving the polling states cancels the timer; re-entering them
		// schedules a fresh one.
		e.poll.stop()
	}
	e.schedulePollLocked()
	e.announceLocked(session)
}

// settleMoveLocked resets the provisional move against the current
// snapshot. A move survives only when asked to (a failed submission) or
// when its actions cannot be taken back, and then only while it is still
// the local turn in the phase the move was built for and the adapter
// accepts every action again.
func (e *Engine) settleMoveLocked(keepMove bool) {
	session := *e.session
	if binder, ok := e.adapter.(adapter.Binder); ok && binder.Binding(session, e.builder.Move()) {
		keepMove = true
	}
	kept := keepMove && !e.builder.Move().Empty() &&
		session.Editable() && session.Phase == e.movePhase &&
		e.builder.Rebase(e.adapter, session)
	if kept {
		e.schedulePreviewLocked()
	} else {
		e.builder.Reset()
		e.preview.cancel()
	}
	e.movePhase = session.Phase
	e.resetDeferred = false
}

// Session returns a copy of the current snapshot.
func (e *Engine) Session() (domain.GameSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.GameSession{}, false
	}
	return *e.session, true
}

type announcement struct {
	seen  map[string]bool
	slots []domain.Slot
	timer Timer
}

func (a *announcement) clear() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.slots = nil
}

// announceLocked shows a new opponent action once per key for a short
// while. Seen keys live only as long as the engine.
func (e *Engine) announceLocked(session domain.GameSession) {
	announcer, ok := e.adapter.(adapter.Announcer)
	if !ok {
		return
	}
	key, slots, ok := announcer.Announcement(session)
	if !ok || e.announce.seen[key] {
		return
	}
	e.announce.seen[key] = true
	e.showLocked(slots)
}

// showLocked highlights slots for opts.Announcement. Edits are refused
// while they are shown.
func (e *Engine) showLocked(slots []domain.Slot) {
	e.announce.clear()
	e.announce.slots = slots
	var timer Timer
	timer = e.opts.Clock.AfterFunc(e.opts.Announcement, func() {
		e.mu.Lock()
		if e.announce.timer != timer {
			e.mu.Unlock()
			return
		}
		e.announce.timer = nil
		e.announce.slots = nil
		e.mu.Unlock()
		e.notify()
	})
	e.announce.timer = timer
}
