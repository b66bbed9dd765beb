package domain

import "strings"

// Variant identifies a game family handled by one adapter.
type Variant string

const (
	VariantWordGrid  Variant = "wordgrid"
	VariantFleetGrid Variant = "fleetgrid"
	VariantCodeBreak Variant = "codebreak"
	VariantPairMatch Variant = "pairmatch"
)

// ParseVariant normalizes a variant name.
func ParseVariant(raw string) (Variant, bool) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(raw))); v {
	case VariantWordGrid, VariantFleetGrid, VariantCodeBreak, VariantPairMatch:
		return v, true
	default:
		return "", false
	}
}

// Phase is the lifecycle phase reported by the authority.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

// ParsePhase maps an authority status string to a Phase. Any status past
// setup and play ("completed", "resigned", ...) is terminal. A missing
// status is read as active so the client keeps polling.
func ParsePhase(raw string) Phase {
	switch Phase(strings.ToLower(strings.TrimSpace(raw))) {
	case PhaseSetup:
		return PhaseSetup
	case PhaseActive, "":
		return PhaseActive
	default:
		return PhaseCompleted
	}
}

// Seat is one of the two player positions.
type Seat int

const (
	SeatNone Seat = iota
	SeatOne
	SeatTwo
)

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	switch s {
	case SeatOne:
		return SeatTwo
	case SeatTwo:
		return SeatOne
	default:
		return SeatNone
	}
}

// SeatFor resolves which seat a user id occupies.
func SeatFor(userID, player1ID, player2ID int64) Seat {
	switch userID {
	case 0:
		return SeatNone
	case player1ID:
		return SeatOne
	case player2ID:
		return SeatTwo
	default:
		return SeatNone
	}
}

// Outcome is the terminal result of a completed game.
type Outcome struct {
	Winner Seat
	Draw   bool
}

// Rules carries the per-game configuration the local checks depend on.
type Rules struct {
	Rows         int
	Cols         int
	CodeLength   int
	PaletteSize  int
	AllowRepeats bool
	MaxGuesses   int
	Fleet        []FleetSegment
}

// FleetSegment is one fixed-length segment of a targeting-grid fleet.
type FleetSegment struct {
	Name   string
	Length int
}

// GameSession is the authoritative snapshot of one game as seen by the
// local seat. It is replaced wholesale on every refresh.
type GameSession struct {
	GameID    string
	Variant   Variant
	Phase     Phase
	TurnOwner Seat
	LocalSeat Seat
	// Ready reports that the local seat's setup submission was accepted.
	Ready   bool
	Outcome *Outcome
	Rules   Rules
	// View is the variant-specific public and private payload.
	View any
}

// IsMyTurn reports whether the local seat may edit and commit.
func (s GameSession) IsMyTurn() bool {
	return s.TurnOwner != SeatNone && s.TurnOwner == s.LocalSeat
}

// Completed reports whether the session reached its terminal phase.
func (s GameSession) Completed() bool {
	return s.Phase == PhaseCompleted
}

// Editable reports whether provisional edits are currently accepted.
func (s GameSession) Editable() bool {
	return !s.Completed() && s.IsMyTurn()
}

// SetupTurnOwner is the turn owner adapters report during setup: the local
// seat while it still owes its setup submission, nobody afterwards.
func SetupTurnOwner(local Seat, ready bool) Seat {
	if ready {
		return SeatNone
	}
	return local
}

// OutcomeFor builds the outcome of a completed game from the winner's user id.
func OutcomeFor(winnerID *int64, player1ID, player2ID int64) *Outcome {
	if winnerID == nil || *winnerID == 0 {
		return &Outcome{Draw: true}
	}
	return &Outcome{Winner: SeatFor(*winnerID, player1ID, player2ID)}
}
