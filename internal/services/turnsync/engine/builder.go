package engine

import (
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Builder holds the provisional move and the selection cursor. It is not
// safe for concurrent use; the engine guards it.
type Builder struct {
	move      domain.Move
	selection *domain.Selection
}

// Reset clears the move and the selection.
func (b *Builder) Reset() {
	b.move = domain.Move{}
	b.selection = nil
}

// Move returns the provisional move.
func (b *Builder) Move() domain.Move {
	return b.move
}

// Selection returns the selected resource, if any.
func (b *Builder) Selection() (domain.Selection, bool) {
	if b.selection == nil {
		return domain.Selection{}, false
	}
	return *b.selection, true
}

// Select sets the cursor. Exclusive resources already in the move are
// rejected; adapters may reject more through adapter.SelectionChecker.
func (b *Builder) Select(a adapter.Adapter, session domain.GameSession, sel domain.Selection) error {
	if checker, ok := a.(adapter.SelectionChecker); ok {
		if err := checker.CheckSelection(session, b.move, sel); err != nil {
			return err
		}
	} else if b.move.Consumed(sel.Resource) {
		return adapter.Unavailable(sel.Resource, "already used")
	}
	b.selection = &sel
	return nil
}

// Deselect clears the cursor.
func (b *Builder) Deselect() {
	b.selection = nil
}

// Toggle removes the pending action at position or appends one through the
// adapter. It reports whether the move changed. The selection is dropped
// once its resource is consumed.
func (b *Builder) Toggle(a adapter.Adapter, session domain.GameSession, position domain.Cell) (bool, error) {
	next, err := a.PlaceAt(session, b.move, b.selection, position)
	if err != nil {
		return false, err
	}
	changed := next.Len() != b.move.Len() || next.Hash() != b.move.Hash()
	b.move = next
	if b.selection != nil && next.Consumed(b.selection.Resource) {
		b.selection = nil
	}
	return changed, nil
}

// Rebase replays the move against session through the adapter. The move is
// kept, and true returned, only when every action lands unchanged.
func (b *Builder) Rebase(a adapter.Adapter, session domain.GameSession) bool {
	var replay domain.Move
	for _, action := range b.move.Actions() {
		sel := domain.Selection{Resource: action.Resource, Value: action.Value}
		next, err := a.PlaceAt(session, replay, &sel, action.At)
		if err != nil {
			return false
		}
		replay = next
	}
	if replay.Len() != b.move.Len() || replay.Hash() != b.move.Hash() {
		return false
	}
	b.move = replay
	if b.selection != nil && replay.Consumed(b.selection.Resource) {
		b.selection = nil
	}
	return true
}
