package engine

import (
	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// editLocked gates every edit: it must be the local turn and no
// submission may be outstanding, since the move is frozen during commit.
func (e *Engine) editLocked() error {
	if err := e.gateLocked(); err != nil {
		return err
	}
	if e.submitting {
		return apperrors.New(apperrors.CodeAlreadySubmitting, "move is being submitted")
	}
	if len(e.announce.slots) > 0 {
		return apperrors.New(apperrors.CodeInvalidMove, "wait for the revealed tiles")
	}
	return nil
}

// Select sets the resource for the next placement.
func (e *Engine) Select(sel domain.Selection) error {
	e.mu.Lock()
	if err := e.editLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.builder.Select(e.adapter, *e.session, sel); err != nil {
		e.mu.Unlock()
		return err
	}
	e.rejection = nil
	e.mu.Unlock()
	e.notify()
	return nil
}

// Deselect clears the selection cursor.
func (e *Engine) Deselect() {
	e.mu.Lock()
	e.builder.Deselect()
	e.mu.Unlock()
	e.notify()
}

// Toggle removes the pending action at position, or places the selection
// there. Changes reschedule the preview.
func (e *Engine) Toggle(position domain.Cell) error {
	e.mu.Lock()
	if err := e.editLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	changed, err := e.builder.Toggle(e.adapter, *e.session, position)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !changed {
		e.mu.Unlock()
		return nil
	}
	e.rejection = nil
	e.schedulePreviewLocked()
	e.mu.Unlock()
	e.notify()
	return nil
}

// Fill places the selection at the adapter's next free position.
func (e *Engine) Fill() error {
	e.mu.Lock()
	cursor, ok := e.adapter.(adapter.Cursor)
	if !ok || e.session == nil {
		e.mu.Unlock()
		return apperrors.New(apperrors.CodeInvalidMove, "no next position for this game")
	}
	position, ok := cursor.NextPosition(*e.session, e.builder.Move())
	e.mu.Unlock()
	if !ok {
		return apperrors.New(apperrors.CodeOutOfBounds, "every position is filled")
	}
	return e.Toggle(position)
}

// Clear drops the provisional move and its preview. Moves the adapter
// marks as binding cannot be cleared.
func (e *Engine) Clear() error {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return apperrors.New(apperrors.CodeAlreadySubmitting, "move is being submitted")
	}
	if binder, ok := e.adapter.(adapter.Binder); ok && e.session != nil && binder.Binding(*e.session, e.builder.Move()) {
		e.mu.Unlock()
		return apperrors.New(apperrors.CodeInvalidMove, "a flipped tile cannot be turned back")
	}
	e.builder.Reset()
	e.preview.cancel()
	e.mu.Unlock()
	e.notify()
	return nil
}

// Shuffle reorders the display of free private resources when the adapter
// supports it. The snapshot and the move are untouched; the order lasts
// until the next refresh.
func (e *Engine) Shuffle() error {
	e.mu.Lock()
	rearranger, ok := e.adapter.(adapter.Rearranger)
	if !ok || e.session == nil {
		e.mu.Unlock()
		return apperrors.New(apperrors.CodeInvalidMove, "nothing to shuffle")
	}
	e.arrangement = rearranger.Rearrange(*e.session, e.arrangement, e.builder.Move(), e.opts.Rand)
	e.mu.Unlock()
	e.notify()
	return nil
}
