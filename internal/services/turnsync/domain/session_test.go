package domain

import "testing"

func TestSessionTurnGating(t *testing.T) {
	s := GameSession{Phase: PhaseActive, TurnOwner: SeatOne, LocalSeat: SeatOne}
	if !s.IsMyTurn() || !s.Editable() {
		t.Fatal("expected my turn")
	}
	s.TurnOwner = SeatTwo
	if s.IsMyTurn() {
		t.Fatal("expected opponent turn")
	}
	s.TurnOwner = SeatOne
	s.Phase = PhaseCompleted
	if s.Editable() {
		t.Fatal("completed sessions are not editable")
	}
	if (GameSession{}).IsMyTurn() {
		t.Fatal("zero session must not be my turn")
	}
}

func TestSeatHelpers(t *testing.T) {
	if SeatFor(5, 5, 9) != SeatOne || SeatFor(9, 5, 9) != SeatTwo || SeatFor(3, 5, 9) != SeatNone {
		t.Fatal("unexpected seat resolution")
	}
	if SeatOne.Opponent() != SeatTwo || SeatNone.Opponent() != SeatNone {
		t.Fatal("unexpected opponent")
	}
	if SetupTurnOwner(SeatTwo, false) != SeatTwo || SetupTurnOwner(SeatTwo, true) != SeatNone {
		t.Fatal("unexpected setup turn owner")
	}
	winner := int64(9)
	if out := OutcomeFor(&winner, 5, 9); out.Winner != SeatTwo || out.Draw {
		t.Fatalf("outcome = %+v", out)
	}
	if out := OutcomeFor(nil, 5, 9); !out.Draw {
		t.Fatalf("outcome = %+v, want draw", out)
	}
}

func TestParseHelpers(t *testing.T) {
	if v, ok := ParseVariant(" WordGrid "); !ok || v != VariantWordGrid {
		t.Fatalf("ParseVariant = %v %v", v, ok)
	}
	if _, ok := ParseVariant("chess"); ok {
		t.Fatal("expected unknown variant")
	}
	phases := map[string]Phase{
		"setup":     PhaseSetup,
		" Active ":  PhaseActive,
		"":          PhaseActive,
		"completed": PhaseCompleted,
		"resigned":  PhaseCompleted,
		"abandoned": PhaseCompleted,
	}
	for raw, want := range phases {
		if got := ParsePhase(raw); got != want {
			t.Fatalf("ParsePhase(%q) = %v, want %v", raw, got, want)
		}
	}
}
