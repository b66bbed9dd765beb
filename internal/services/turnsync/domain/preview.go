package domain

import "encoding/json"

// Slot is a fillable position and whether committed state already holds it.
type Slot struct {
	At       Cell
	Occupied bool
	// Label is the committed content, when visible (a letter, a shot mark).
	Label string
}

// Legality is the result of the cheap local checks.
type Legality struct {
	Legal  bool
	Reason string
}

// Legal is the passing Legality.
var Legal = Legality{Legal: true}

// Illegal builds a failing Legality.
func Illegal(reason string) Legality {
	return Legality{Reason: reason}
}

// Presentation holds render-only structures derived from a session and a
// provisional move.
type Presentation struct {
	// Groups are connected components of filled cells.
	Groups [][]Cell
	// Highlights are named cell sets ("pending", "last-move", ...).
	Highlights map[string][]Cell
}

// Payload is an authority request body for a named action.
type Payload struct {
	Action string
	Body   json.RawMessage
}

// Equal reports byte equality of two payloads.
func (p Payload) Equal(other Payload) bool {
	return p.Action == other.Action && string(p.Body) == string(other.Body)
}

// PreviewResult is the latest preview for the move whose hash is Key.
type PreviewResult struct {
	Key    uint64
	Valid  bool
	Metric int
	Detail []string
	Reason string
	// Remote reports that the authority computed the result.
	Remote bool
}
