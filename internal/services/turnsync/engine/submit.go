package engine

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// ActionResign forfeits the game. It is accepted on either seat's turn.
const ActionResign = "resign"

// Commit submits the provisional move. Only one submission may be
// outstanding; a second call fails with ALREADY_SUBMITTING without a
// request. Whatever the outcome, the lock is released and the snapshot
// refreshed.
func (e *Engine) Commit(ctx context.Context) (json.RawMessage, error) {
	e.mu.Lock()
	if err := e.lockLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.validateLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	payload, err := e.adapter.ToCommitPayload(*e.session, e.builder.Move())
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.submitting = true
	e.mu.Unlock()
	e.notify()

	return e.submit(ctx, payload)
}

// Action submits an auxiliary action (pass, exchange, resign) under the
// same lock and refresh discipline as Commit.
func (e *Engine) Action(ctx context.Context, action string, values ...string) (json.RawMessage, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	e.mu.Lock()
	if err := e.lockLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	payload, err := e.auxiliaryLocked(action, values)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.submitting = true
	e.mu.Unlock()
	e.notify()

	return e.submit(ctx, payload)
}

func (e *Engine) lockLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.submitting {
		return apperrors.New(apperrors.CodeAlreadySubmitting, "a submission is already in flight")
	}
	return nil
}

func (e *Engine) auxiliaryLocked(action string, values []string) (domain.Payload, error) {
	if action == ActionResign {
		if e.session == nil {
			return domain.Payload{}, apperrors.New(apperrors.CodeNotFound, "game not loaded")
		}
		if e.session.Completed() {
			return domain.Payload{}, apperrors.New(apperrors.CodeGameCompleted, "game is already completed")
		}
		return adapter.Encode(ActionResign, struct{}{})
	}
	if err := e.gateLocked(); err != nil {
		return domain.Payload{}, err
	}
	aux, ok := e.adapter.(adapter.AuxiliaryActions)
	if !ok {
		return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "unsupported action "+action)
	}
	return aux.Auxiliary(*e.session, action, values)
}

// submit sends payload, then refreshes. A rejected move is kept when the
// refreshed snapshot still accepts it, so the player can adjust it.
func (e *Engine) submit(ctx context.Context, payload domain.Payload) (json.RawMessage, error) {
	raw, err := e.authority.Commit(ctx, e.adapter.Route(), e.gameID, payload)

	e.mu.Lock()
	e.submitting = false
	if err != nil {
		e.rejection = err
	} else {
		e.rejection = nil
		if revealer, ok := e.adapter.(adapter.Revealer); ok && !e.closed {
			if slots, ok := revealer.Reveal(payload, raw); ok {
				e.showLocked(slots)
			}
		}
	}
	e.mu.Unlock()

	if _, refreshErr := e.refresh(ctx, err != nil); refreshErr != nil && refreshErr != ErrClosed {
		e.opts.Logf("refresh after %s %s %s: %v", payload.Action, e.adapter.Variant(), e.gameID, refreshErr)
		e.mu.Lock()
		if e.resetDeferred && e.session != nil && !e.closed {
			e.settleMoveLocked(err != nil)
		}
		e.mu.Unlock()
		e.notify()
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
