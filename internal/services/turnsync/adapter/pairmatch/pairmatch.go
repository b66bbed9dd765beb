package pairmatch

import (
	"encoding/json"
	"strconv"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// FlipsPerReveal is how many tiles one reveal turns over.
const FlipsPerReveal = 2

// Adapter implements adapter.Adapter for the tile-matching game.
type Adapter struct{}

// New returns the tile-matching adapter.
func New() Adapter {
	return Adapter{}
}

// Variant returns domain.VariantPairMatch.
func (Adapter) Variant() domain.Variant { return domain.VariantPairMatch }

// Route returns the authority collection name.
func (Adapter) Route() string { return "memory" }

// DecodeState normalizes a game response.
func (Adapter) DecodeState(raw json.RawMessage, localUserID int64) (domain.GameSession, error) {
	var resp gameResponse
	if err := adapter.Decode(raw, &resp); err != nil {
		return domain.GameSession{}, err
	}
	if resp.Game == nil {
		return domain.GameSession{}, apperrors.New(apperrors.CodeUnknown, "game state has no game record")
	}
	session := resp.Game.Session(domain.VariantPairMatch, localUserID)
	rows, cols := dimensions(resp.Board, resp.Game.BoardSize)
	session.Rules = domain.Rules{Rows: rows, Cols: cols}
	session.View = View{
		Board:        resp.Board,
		FullBoard:    resp.FullBoard,
		Moves:        resp.Moves,
		Scores:       [2]int{resp.Game.Player1Score, resp.Game.Player2Score},
		TotalPairs:   resp.TotalPairs,
		MatchedCount: resp.MatchedCount,
		localUserID:  localUserID,
	}
	return session, nil
}

// DescribeSlots lists every tile; matched tiles are occupied and labeled
// with their id.
func (Adapter) DescribeSlots(session domain.GameSession) []domain.Slot {
	view := viewOf(session)
	slots := make([]domain.Slot, 0, session.Rules.Rows*session.Rules.Cols)
	for r := 0; r < session.Rules.Rows; r++ {
		for c := 0; c < session.Rules.Cols; c++ {
			cell := domain.Cell{Row: r, Col: c}
			slot := domain.Slot{At: cell, Occupied: view.Matched(cell)}
			if slot.Occupied {
				value, _ := at(view.Board, cell)
				slot.Label = strconv.Itoa(value)
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// PlaceAt flips a face-down tile. Flips cannot be taken back: toggling a
// pending tile, or a third tile while two are pending, is ignored. Only the
// first flip is labeled from the full board; the second tile's value comes
// from the reveal response.
func (Adapter) PlaceAt(session domain.GameSession, move domain.Move, _ *domain.Selection, position domain.Cell) (domain.Move, error) {
	if move.IndexAt(position) >= 0 || move.Len() >= FlipsPerReveal {
		return move, nil
	}
	if !position.In(session.Rules.Rows, session.Rules.Cols) {
		return move, adapter.OutOfBounds(position)
	}
	view := viewOf(session)
	if view.Matched(position) {
		return move, adapter.Occupied(position)
	}
	var label string
	if move.Empty() {
		if value, ok := at(view.FullBoard, position); ok {
			label = strconv.Itoa(value)
		}
	}
	return move.Append(domain.PendingAction{
		At:       position,
		Span:     []domain.Cell{position},
		Value:    label,
		Resource: domain.Resource{Kind: domain.ResourceFlip, Index: position.Row*session.Rules.Cols + position.Col},
	})
}

// Binding reports that a started reveal must be completed.
func (Adapter) Binding(_ domain.GameSession, move domain.Move) bool {
	return !move.Empty()
}

// IsLocallyLegal requires two distinct face-down tiles.
func (Adapter) IsLocallyLegal(session domain.GameSession, move domain.Move) domain.Legality {
	if move.Len() != FlipsPerReveal {
		return domain.Illegal("flip two tiles")
	}
	view := viewOf(session)
	for _, a := range move.Actions() {
		if !a.At.In(session.Rules.Rows, session.Rules.Cols) || view.Matched(a.At) {
			return domain.Illegal("tile already matched")
		}
	}
	return domain.Legal
}

// Present highlights pending flips and matched tiles.
func (Adapter) Present(session domain.GameSession, move domain.Move) domain.Presentation {
	view := viewOf(session)
	highlights := adapter.PendingCells(move)
	var matched []domain.Cell
	for r := 0; r < session.Rules.Rows; r++ {
		for c := 0; c < session.Rules.Cols; c++ {
			cell := domain.Cell{Row: r, Col: c}
			if view.Matched(cell) {
				matched = append(matched, cell)
			}
		}
	}
	if len(matched) > 0 {
		highlights["matched"] = matched
	}
	return domain.Presentation{Highlights: highlights}
}

type revealRequest struct {
	Row1 int `json:"row1"`
	Col1 int `json:"col1"`
	Row2 int `json:"row2"`
	Col2 int `json:"col2"`
}

// ToCommitPayload builds the reveal request in flip order.
func (Adapter) ToCommitPayload(_ domain.GameSession, move domain.Move) (domain.Payload, error) {
	actions := move.Actions()
	if len(actions) != FlipsPerReveal {
		return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "flip two tiles")
	}
	return adapter.Encode("reveal", revealRequest{
		Row1: actions[0].At.Row,
		Col1: actions[0].At.Col,
		Row2: actions[1].At.Row,
		Col2: actions[1].At.Col,
	})
}

// PreviewPayload reports no remote preview.
func (Adapter) PreviewPayload(domain.GameSession, domain.Move) (domain.Payload, bool) {
	return domain.Payload{}, false
}

// DecodeRevealResult decodes the reveal response so both tiles can be shown
// before the next refresh.
func DecodeRevealResult(raw json.RawMessage) (RevealResult, error) {
	var result RevealResult
	if err := adapter.Decode(raw, &result); err != nil {
		return RevealResult{}, err
	}
	return result, nil
}

// Reveal labels both tiles of a committed reveal with the values the
// authority returned.
func (Adapter) Reveal(payload domain.Payload, response json.RawMessage) ([]domain.Slot, bool) {
	if payload.Action != "reveal" {
		return nil, false
	}
	var req revealRequest
	if err := json.Unmarshal(payload.Body, &req); err != nil {
		return nil, false
	}
	result, err := DecodeRevealResult(response)
	if err != nil {
		return nil, false
	}
	return []domain.Slot{
		{At: domain.Cell{Row: req.Row1, Col: req.Col1}, Occupied: result.Matched, Label: strconv.Itoa(result.Tile1)},
		{At: domain.Cell{Row: req.Row2, Col: req.Col2}, Occupied: result.Matched, Label: strconv.Itoa(result.Tile2)},
	}, true
}

// Announcement returns the opponent's latest unmatched reveal while the
// local player is on turn. The key is the move id; callers show each key
// once.
func (Adapter) Announcement(session domain.GameSession) (string, []domain.Slot, bool) {
	view := viewOf(session)
	if !session.IsMyTurn() || len(view.Moves) == 0 {
		return "", nil, false
	}
	last := view.Moves[0]
	if last.ID == 0 || last.UserID == view.localUserID || last.Matched {
		return "", nil, false
	}
	return strconv.FormatInt(last.ID, 10), []domain.Slot{
		{At: domain.Cell{Row: last.Row1, Col: last.Col1}, Label: strconv.Itoa(last.Tile1)},
		{At: domain.Cell{Row: last.Row2, Col: last.Col2}, Label: strconv.Itoa(last.Tile2)},
	}, true
}
