package adapter

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// GameHeader is the game record fields shared by every variant response.
type GameHeader struct {
	ID          int64  `json:"id"`
	Player1ID   int64  `json:"player1_id"`
	Player2ID   int64  `json:"player2_id"`
	CurrentTurn int64  `json:"current_turn"`
	Status      string `json:"status"`
	WinnerID    *int64 `json:"winner_id,omitempty"`
}

// Session fills the variant-independent session fields from the header.
// Active games give the turn to whoever holds current_turn.
func (h GameHeader) Session(variant domain.Variant, localUserID int64) domain.GameSession {
	session := domain.GameSession{
		GameID:    fmt.Sprint(h.ID),
		Variant:   variant,
		Phase:     domain.ParsePhase(h.Status),
		LocalSeat: domain.SeatFor(localUserID, h.Player1ID, h.Player2ID),
	}
	switch session.Phase {
	case domain.PhaseCompleted:
		session.Outcome = domain.OutcomeFor(h.WinnerID, h.Player1ID, h.Player2ID)
	case domain.PhaseActive:
		session.TurnOwner = domain.SeatFor(h.CurrentTurn, h.Player1ID, h.Player2ID)
	}
	return session
}

// Decode unmarshals raw into target and reports malformed payloads as
// UNKNOWN errors.
func Decode(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "decode game state", err)
	}
	return nil
}

// Encode builds a payload for action from body.
func Encode(action string, body any) (domain.Payload, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return domain.Payload{}, apperrors.Wrap(apperrors.CodeUnknown, "encode "+action+" payload", err)
	}
	return domain.Payload{Action: action, Body: data}, nil
}

// RequireSelection fails when nothing is selected for a placement.
func RequireSelection(selection *domain.Selection) error {
	if selection == nil {
		return apperrors.New(apperrors.CodeResourceUnavailable, "nothing selected")
	}
	return nil
}

// OutOfBounds reports a position outside the grid.
func OutOfBounds(c domain.Cell) error {
	return apperrors.WithMetadata(apperrors.CodeOutOfBounds,
		fmt.Sprintf("cell %s is outside the board", c),
		map[string]string{"Cell": c.String()})
}

// Occupied reports a position already held by committed state.
func Occupied(c domain.Cell) error {
	return apperrors.WithMetadata(apperrors.CodeOccupied,
		fmt.Sprintf("cell %s is already occupied", c),
		map[string]string{"Cell": c.String()})
}

// Unavailable reports a resource that cannot be used.
func Unavailable(r domain.Resource, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeResourceUnavailable,
		fmt.Sprintf("resource %s unavailable: %s", r, reason),
		map[string]string{"Resource": r.String()})
}

// PendingCells lists the move's covered cells under the "pending" key, the
// highlight set every variant shares.
func PendingCells(move domain.Move) map[string][]domain.Cell {
	cells := move.Cells()
	domain.SortCells(cells)
	return map[string][]domain.Cell{"pending": cells}
}
