package domain

import (
	"math/rand"
	"testing"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
)

func rackAction(at Cell, index int, letter string) PendingAction {
	return PendingAction{
		At:       at,
		Span:     []Cell{at},
		Value:    letter,
		Resource: Resource{Kind: ResourceRack, Index: index},
	}
}

func TestAppendRejectsConsumedResource(t *testing.T) {
	m, err := NewMove(rackAction(Cell{7, 7}, 0, "A"))
	if err != nil {
		t.Fatalf("new move: %v", err)
	}
	_, err = m.Append(rackAction(Cell{7, 8}, 0, "A"))
	if !apperrors.HasCode(err, apperrors.CodeResourceUnavailable) {
		t.Fatalf("err = %v, want RESOURCE_UNAVAILABLE", err)
	}
}

func TestAppendRejectsCoveredCell(t *testing.T) {
	m, _ := NewMove(PendingAction{
		At:       Cell{0, 0},
		Span:     Line(Cell{0, 0}, true, 3),
		Resource: Resource{Kind: ResourceSegment, Index: 0},
	})
	_, err := m.Append(PendingAction{
		At:       Cell{0, 2},
		Span:     Line(Cell{0, 2}, false, 2),
		Resource: Resource{Kind: ResourceSegment, Index: 1},
	})
	if !apperrors.HasCode(err, apperrors.CodeOccupied) {
		t.Fatalf("err = %v, want OCCUPIED", err)
	}
}

func TestSharedResourcesMayRepeat(t *testing.T) {
	red := Resource{Kind: ResourcePalette, Index: 2}
	m, err := NewMove(
		PendingAction{At: Cell{0, 0}, Resource: red, Shared: true},
		PendingAction{At: Cell{0, 1}, Resource: red, Shared: true},
	)
	if err != nil {
		t.Fatalf("new move: %v", err)
	}
	if m.Consumed(red) {
		t.Fatal("shared resource should not count as consumed")
	}
}

func TestMoveIsImmutable(t *testing.T) {
	base, _ := NewMove(rackAction(Cell{1, 1}, 0, "A"))
	next, err := base.Append(rackAction(Cell{1, 2}, 1, "B"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if base.Len() != 1 || next.Len() != 2 {
		t.Fatalf("base len %d next len %d", base.Len(), next.Len())
	}
	actions := next.Actions()
	actions[0].Span[0] = Cell{9, 9}
	if next.IndexAt(Cell{1, 1}) != 0 {
		t.Fatal("Actions must return a deep copy")
	}
	removed, action, ok := next.Remove(Cell{1, 1})
	if !ok || action.Value != "A" {
		t.Fatalf("remove = %v %v", action, ok)
	}
	if removed.Len() != 1 || next.Len() != 2 {
		t.Fatal("remove must not mutate the receiver")
	}
}

func TestHashIgnoresInsertionOrder(t *testing.T) {
	a, _ := NewMove(rackAction(Cell{7, 7}, 0, "C"), rackAction(Cell{7, 8}, 1, "A"))
	b, _ := NewMove(rackAction(Cell{7, 8}, 1, "A"), rackAction(Cell{7, 7}, 0, "C"))
	if a.Hash() != b.Hash() {
		t.Fatal("expected equal hashes for equal action sets")
	}
	c, _ := NewMove(rackAction(Cell{7, 7}, 0, "C"), rackAction(Cell{7, 8}, 1, "T"))
	if a.Hash() == c.Hash() {
		t.Fatal("expected different hashes for different values")
	}
	if (Move{}).Hash() != 0 {
		t.Fatal("expected empty move hash zero")
	}
	if a.Hash() == 0 {
		t.Fatal("non-empty move must not hash to zero")
	}
}

func TestRandomTogglesNeverDoubleConsume(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var m Move
	for step := 0; step < 2000; step++ {
		at := Cell{Row: rng.Intn(4), Col: rng.Intn(4)}
		if next, _, ok := m.Remove(at); ok {
			m = next
			continue
		}
		next, err := m.Append(rackAction(at, rng.Intn(7), "A"))
		if err == nil {
			m = next
		}
		seen := map[Resource]bool{}
		for _, a := range m.Actions() {
			if seen[a.Resource] {
				t.Fatalf("step %d: resource %s consumed twice", step, a.Resource)
			}
			seen[a.Resource] = true
		}
	}
}
