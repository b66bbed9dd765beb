package wordgrid

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"unicode"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Adapter implements adapter.Adapter for the word-placement game.
type Adapter struct{}

// New returns the word-placement adapter.
func New() Adapter {
	return Adapter{}
}

// Variant returns domain.VariantWordGrid.
func (Adapter) Variant() domain.Variant { return domain.VariantWordGrid }

// Route returns the authority collection name.
func (Adapter) Route() string { return "scrabble" }

// DecodeState normalizes a game response.
func (Adapter) DecodeState(raw json.RawMessage, localUserID int64) (domain.GameSession, error) {
	var resp gameResponse
	if err := adapter.Decode(raw, &resp); err != nil {
		return domain.GameSession{}, err
	}
	if resp.Game == nil {
		return domain.GameSession{}, apperrors.New(apperrors.CodeUnknown, "game state has no game record")
	}
	session := resp.Game.Session(domain.VariantWordGrid, localUserID)
	session.Rules = domain.Rules{Rows: BoardSize, Cols: BoardSize}
	board := resp.Game.Board
	if len(board) == 0 {
		board = emptyBoard()
	}
	session.View = View{
		Board:          board,
		Rack:           append([]Tile(nil), resp.Rack...),
		TilesRemaining: resp.TilesRemaining,
		Scores:         [2]int{resp.Game.Player1Score, resp.Game.Player2Score},
		LastMove:       lastMoveCells(resp.LastMove),
	}
	return session, nil
}

// DescribeSlots lists every board square.
func (Adapter) DescribeSlots(session domain.GameSession) []domain.Slot {
	view := viewOf(session)
	slots := make([]domain.Slot, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			cell := domain.Cell{Row: r, Col: c}
			slot := domain.Slot{At: cell, Occupied: view.Filled(cell)}
			if slot.Occupied {
				slot.Label = view.Board[r][c].Letter
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// CheckSelection rejects rack indices that do not exist or are already on
// the board.
func (Adapter) CheckSelection(session domain.GameSession, move domain.Move, selection domain.Selection) error {
	view := viewOf(session)
	return checkRack(view, move, selection.Resource)
}

func checkRack(view View, move domain.Move, r domain.Resource) error {
	if r.Kind != domain.ResourceRack || r.Index < 0 || r.Index >= len(view.Rack) {
		return adapter.Unavailable(r, "not a rack tile")
	}
	if move.Consumed(r) {
		return adapter.Unavailable(r, "already placed")
	}
	return nil
}

// PlaceAt toggles a rack tile at position.
func (a Adapter) PlaceAt(session domain.GameSession, move domain.Move, selection *domain.Selection, position domain.Cell) (domain.Move, error) {
	if next, _, ok := move.Remove(position); ok {
		return next, nil
	}
	if err := adapter.RequireSelection(selection); err != nil {
		return move, err
	}
	if !position.In(BoardSize, BoardSize) {
		return move, adapter.OutOfBounds(position)
	}
	view := viewOf(session)
	if view.Filled(position) {
		return move, adapter.Occupied(position)
	}
	if err := checkRack(view, move, selection.Resource); err != nil {
		return move, err
	}
	tile := view.Rack[selection.Resource.Index]
	letter := strings.ToUpper(strings.TrimSpace(tile.Letter))
	if tile.Blank() {
		letter = strings.ToUpper(strings.TrimSpace(selection.Value))
		if !validLetter(letter) {
			return move, adapter.Unavailable(selection.Resource, "blank tile needs a letter")
		}
	}
	return move.Append(domain.PendingAction{
		At:       position,
		Span:     []domain.Cell{position},
		Value:    letter,
		Resource: selection.Resource,
	})
}

func validLetter(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && unicode.IsUpper(runes[0]) && runes[0] <= 'Z'
}

// IsLocallyLegal checks bounds, emptiness, rack ownership and blank letters.
// Line and word rules are left to the authority.
func (Adapter) IsLocallyLegal(session domain.GameSession, move domain.Move) domain.Legality {
	if move.Empty() {
		return domain.Illegal("place at least one tile")
	}
	view := viewOf(session)
	for _, action := range move.Actions() {
		if !action.At.In(BoardSize, BoardSize) {
			return domain.Illegal("tile outside the board")
		}
		if view.Filled(action.At) {
			return domain.Illegal("square already taken")
		}
		r := action.Resource
		if r.Kind != domain.ResourceRack || r.Index < 0 || r.Index >= len(view.Rack) {
			return domain.Illegal("tile is not in your rack")
		}
		if !validLetter(action.Value) {
			return domain.Illegal("blank tile needs a letter")
		}
	}
	return domain.Legal
}

// Present groups committed and pending tiles and highlights the last play.
func (Adapter) Present(session domain.GameSession, move domain.Move) domain.Presentation {
	view := viewOf(session)
	var filled []domain.Cell
	for r, row := range view.Board {
		for c := range row {
			cell := domain.Cell{Row: r, Col: c}
			if view.Filled(cell) {
				filled = append(filled, cell)
			}
		}
	}
	filled = append(filled, move.Cells()...)
	highlights := adapter.PendingCells(move)
	if len(view.LastMove) > 0 {
		highlights["last-move"] = append([]domain.Cell(nil), view.LastMove...)
	}
	return domain.Presentation{
		Groups:     domain.ConnectedGroups(filled),
		Highlights: highlights,
	}
}

type playRequest struct {
	Tiles []PlacedTile `json:"tiles"`
}

func tilesOf(move domain.Move) []PlacedTile {
	actions := move.Actions()
	cells := make([]domain.Cell, len(actions))
	byCell := make(map[domain.Cell]string, len(actions))
	for i, a := range actions {
		cells[i] = a.At
		byCell[a.At] = a.Value
	}
	domain.SortCells(cells)
	tiles := make([]PlacedTile, len(cells))
	for i, c := range cells {
		tiles[i] = PlacedTile{Letter: byCell[c], Row: c.Row, Col: c.Col}
	}
	return tiles
}

// ToCommitPayload builds the play request with tiles in row-major order.
func (Adapter) ToCommitPayload(_ domain.GameSession, move domain.Move) (domain.Payload, error) {
	if move.Empty() {
		return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "no tiles placed")
	}
	return adapter.Encode("play", playRequest{Tiles: tilesOf(move)})
}

// PreviewPayload builds the preview request.
func (Adapter) PreviewPayload(_ domain.GameSession, move domain.Move) (domain.Payload, bool) {
	if move.Empty() {
		return domain.Payload{}, false
	}
	payload, err := adapter.Encode("preview", playRequest{Tiles: tilesOf(move)})
	if err != nil {
		return domain.Payload{}, false
	}
	return payload, true
}

type exchangeRequest struct {
	Tiles []string `json:"tiles"`
}

// Auxiliary builds pass and exchange requests. Exchange values are rack
// letters, with the blank written as a space.
func (Adapter) Auxiliary(session domain.GameSession, action string, values []string) (domain.Payload, error) {
	switch action {
	case "pass":
		return adapter.Encode("pass", struct{}{})
	case "exchange":
		if len(values) == 0 {
			return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "choose tiles to exchange")
		}
		view := viewOf(session)
		available := make(map[string]int, len(view.Rack))
		for _, t := range view.Rack {
			available[t.Letter]++
		}
		tiles := make([]string, 0, len(values))
		for _, v := range values {
			letter := strings.ToUpper(v)
			if letter != BlankLetter {
				letter = strings.TrimSpace(letter)
			}
			if available[letter] == 0 {
				return domain.Payload{}, apperrors.WithMetadata(apperrors.CodeResourceUnavailable,
					"tile "+letter+" is not in the rack", map[string]string{"Resource": letter})
			}
			available[letter]--
			tiles = append(tiles, letter)
		}
		return adapter.Encode("exchange", exchangeRequest{Tiles: tiles})
	default:
		return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "unsupported action "+action)
	}
}

// Rearrange shuffles the display order of rack tiles no pending action
// uses. Tiles on the board keep their position in the order.
func (Adapter) Rearrange(session domain.GameSession, order []int, move domain.Move, rng *rand.Rand) []int {
	view := viewOf(session)
	if len(order) != len(view.Rack) {
		order = make([]int, len(view.Rack))
		for i := range order {
			order[i] = i
		}
	}
	out := append([]int(nil), order...)
	var free []int
	for pos, index := range out {
		if !move.Consumed(domain.Resource{Kind: domain.ResourceRack, Index: index}) {
			free = append(free, pos)
		}
	}
	rng.Shuffle(len(free), func(i, j int) {
		out[free[i]], out[free[j]] = out[free[j]], out[free[i]]
	})
	return out
}
