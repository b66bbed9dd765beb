package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
)

// ResourceKind names the local pool a pending action draws from.
type ResourceKind string

const (
	ResourceNone    ResourceKind = ""
	ResourceRack    ResourceKind = "rack"
	ResourceSegment ResourceKind = "segment"
	ResourcePalette ResourceKind = "palette"
	ResourceShot    ResourceKind = "shot"
	ResourceFlip    ResourceKind = "flip"
)

// Resource identifies one consumable local resource.
type Resource struct {
	Kind  ResourceKind
	Index int
}

// String renders the resource as "kind#index".
func (r Resource) String() string {
	return string(r.Kind) + "#" + strconv.Itoa(r.Index)
}

// Selection is the resource picked for the next placement plus the value it
// carries (a blank tile's chosen letter, a segment orientation).
type Selection struct {
	Resource Resource
	Value    string
}

// PendingAction is one uncommitted step of a provisional move.
type PendingAction struct {
	// At is the anchor position the player toggled.
	At Cell
	// Span lists every cell the action covers; it always includes At.
	Span     []Cell
	Value    string
	Resource Resource
	// Shared resources may back several actions at once (palette colors
	// when repeats are allowed).
	Shared bool
}

// Covers reports whether the action occupies c.
func (a PendingAction) Covers(c Cell) bool {
	if a.At == c {
		return true
	}
	for _, s := range a.Span {
		if s == c {
			return true
		}
	}
	return false
}

func (a PendingAction) cells() []Cell {
	if len(a.Span) == 0 {
		return []Cell{a.At}
	}
	return a.Span
}

func (a PendingAction) clone() PendingAction {
	out := a
	if a.Span != nil {
		out.Span = append([]Cell(nil), a.Span...)
	}
	return out
}

// Move is an ordered provisional move. The zero value is an empty move.
type Move struct {
	actions []PendingAction
}

// NewMove builds a move from actions, enforcing the same invariants as
// repeated Append calls.
func NewMove(actions ...PendingAction) (Move, error) {
	var m Move
	for _, a := range actions {
		next, err := m.Append(a)
		if err != nil {
			return Move{}, err
		}
		m = next
	}
	return m, nil
}

// Len returns the number of pending actions.
func (m Move) Len() int {
	return len(m.actions)
}

// Empty reports whether the move has no pending actions.
func (m Move) Empty() bool {
	return len(m.actions) == 0
}

// Actions returns a copy of the pending actions in insertion order.
func (m Move) Actions() []PendingAction {
	out := make([]PendingAction, len(m.actions))
	for i, a := range m.actions {
		out[i] = a.clone()
	}
	return out
}

// IndexAt returns the index of the action covering c, or -1.
func (m Move) IndexAt(c Cell) int {
	for i, a := range m.actions {
		if a.Covers(c) {
			return i
		}
	}
	return -1
}

// At returns the action covering c.
func (m Move) At(c Cell) (PendingAction, bool) {
	if i := m.IndexAt(c); i >= 0 {
		return m.actions[i].clone(), true
	}
	return PendingAction{}, false
}

// Consumed reports whether an exclusive action already holds r.
func (m Move) Consumed(r Resource) bool {
	if r.Kind == ResourceNone {
		return false
	}
	for _, a := range m.actions {
		if !a.Shared && a.Resource == r {
			return true
		}
	}
	return false
}

// Cells returns every cell covered by pending actions in insertion order.
func (m Move) Cells() []Cell {
	var out []Cell
	for _, a := range m.actions {
		out = append(out, a.cells()...)
	}
	return out
}

// Append returns a move with a added. It fails with RESOURCE_UNAVAILABLE when
// a consumes an exclusive resource already in use and with OCCUPIED when a
// covers a cell another pending action covers.
func (m Move) Append(a PendingAction) (Move, error) {
	if a.Resource.Kind != ResourceNone && !a.Shared && m.Consumed(a.Resource) {
		return m, apperrors.WithMetadata(apperrors.CodeResourceUnavailable,
			fmt.Sprintf("resource %s already used", a.Resource),
			map[string]string{"Resource": a.Resource.String()})
	}
	for _, c := range a.cells() {
		if m.IndexAt(c) >= 0 {
			return m, apperrors.WithMetadata(apperrors.CodeOccupied,
				fmt.Sprintf("cell %s already holds a pending action", c),
				map[string]string{"Cell": c.String()})
		}
	}
	next := make([]PendingAction, 0, len(m.actions)+1)
	for _, existing := range m.actions {
		next = append(next, existing.clone())
	}
	next = append(next, a.clone())
	return Move{actions: next}, nil
}

// Remove returns a move without the action covering c.
func (m Move) Remove(c Cell) (Move, PendingAction, bool) {
	i := m.IndexAt(c)
	if i < 0 {
		return m, PendingAction{}, false
	}
	removed := m.actions[i].clone()
	next := make([]PendingAction, 0, len(m.actions)-1)
	for j, existing := range m.actions {
		if j != i {
			next = append(next, existing.clone())
		}
	}
	return Move{actions: next}, removed, true
}

// Hash returns the structural hash of the move. Two moves with the same set
// of actions hash equally regardless of insertion order; the empty move
// hashes to zero.
func (m Move) Hash() uint64 {
	if len(m.actions) == 0 {
		return 0
	}
	parts := make([]string, len(m.actions))
	for i, a := range m.actions {
		cells := append([]Cell(nil), a.cells()...)
		SortCells(cells)
		var b strings.Builder
		b.WriteString(a.At.String())
		b.WriteByte('|')
		b.WriteString(a.Resource.String())
		b.WriteByte('|')
		b.WriteString(a.Value)
		b.WriteByte('|')
		for _, c := range cells {
			b.WriteString(c.String())
			b.WriteByte(';')
		}
		parts[i] = b.String()
	}
	sort.Strings(parts)
	h := xxhash.Sum64String(strings.Join(parts, "\n"))
	if h == 0 {
		return 1
	}
	return h
}
