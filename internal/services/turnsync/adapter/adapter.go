// Package adapter defines the capability set every game variant implements
// so one engine can drive all of them.
package adapter

import (
	"encoding/json"
	"math/rand/v2"

	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Adapter translates between authority payloads, provisional moves and the
// variant's local placement rules.
//
// Adapters are stateless; every method derives its result from the session
// and move it is given. Implementations must be deterministic so commit
// payloads are reproducible from the same move.
type Adapter interface {
	Variant() domain.Variant
	// Route is the REST collection segment, e.g. "scrabble".
	Route() string
	// DecodeState normalizes the authority's game response for the local
	// user into a session.
	DecodeState(raw json.RawMessage, localUserID int64) (domain.GameSession, error)
	// DescribeSlots lists fillable positions and whether committed state
	// already holds them.
	DescribeSlots(session domain.GameSession) []domain.Slot
	// PlaceAt toggles position: a pending action covering it is removed,
	// otherwise one built from selection is appended.
	PlaceAt(session domain.GameSession, move domain.Move, selection *domain.Selection, position domain.Cell) (domain.Move, error)
	IsLocallyLegal(session domain.GameSession, move domain.Move) domain.Legality
	Present(session domain.GameSession, move domain.Move) domain.Presentation
	ToCommitPayload(session domain.GameSession, move domain.Move) (domain.Payload, error)
	// PreviewPayload returns the remote preview request. False means the
	// variant has no remote preview and local legality is the preview.
	PreviewPayload(session domain.GameSession, move domain.Move) (domain.Payload, bool)
}

// SelectionChecker is implemented by adapters that can reject a selection
// before any placement, e.g. a fleet segment that is not part of the fleet.
type SelectionChecker interface {
	CheckSelection(session domain.GameSession, move domain.Move, selection domain.Selection) error
}

// AuxiliaryActions is implemented by adapters that expose turn actions
// besides the main commit (pass, exchange, resign).
type AuxiliaryActions interface {
	Auxiliary(session domain.GameSession, action string, values []string) (domain.Payload, error)
}

// Rearranger is implemented by adapters whose private resources have a
// display order the player may shuffle (rack shuffle). Given the current
// order (nil for natural), Rearrange returns a new one where order[i] is the
// resource index shown at position i. Resources the move uses keep their
// position; the session is not modified.
type Rearranger interface {
	Rearrange(session domain.GameSession, order []int, move domain.Move, rng *rand.Rand) []int
}

// Binder is implemented by adapters whose pending actions cannot be taken
// back, such as a flipped tile waiting for its pair.
type Binder interface {
	Binding(session domain.GameSession, move domain.Move) bool
}

// Revealer is implemented by adapters whose commit response briefly shows
// values the snapshot keeps hidden.
type Revealer interface {
	Reveal(payload domain.Payload, response json.RawMessage) ([]domain.Slot, bool)
}

// Cursor is implemented by adapters with a natural next position, such as
// the first empty slot of a sequence.
type Cursor interface {
	NextPosition(session domain.GameSession, move domain.Move) (domain.Cell, bool)
}

// Announcer is implemented by adapters that surface an opponent action
// briefly after it is first loaded. The key identifies the action so it is
// shown once.
type Announcer interface {
	Announcement(session domain.GameSession) (key string, slots []domain.Slot, ok bool)
}
