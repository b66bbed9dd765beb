package wordgrid

import (
	"encoding/json"
	"strings"

	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// BoardSize is the side length of the placement grid.
const BoardSize = 15

// BlankLetter marks a blank rack tile.
const BlankLetter = " "

// Tile is a lettered tile on the board or in the rack.
type Tile struct {
	Letter string `json:"letter"`
	Value  int    `json:"value"`
}

// Blank reports whether the tile is an unassigned blank.
func (t Tile) Blank() bool {
	return t.Letter == BlankLetter
}

// PlacedTile is one tile of a play request.
type PlacedTile struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// View is the session payload of a word-placement game.
type View struct {
	Board          [][]Tile
	Rack           []Tile
	TilesRemaining int
	Scores         [2]int
	// LastMove lists the cells of the most recent play.
	LastMove []domain.Cell
}

// Filled reports whether the committed board holds a tile at c.
func (v View) Filled(c domain.Cell) bool {
	if c.Row < 0 || c.Row >= len(v.Board) {
		return false
	}
	row := v.Board[c.Row]
	if c.Col < 0 || c.Col >= len(row) {
		return false
	}
	return strings.TrimSpace(row[c.Col].Letter) != ""
}

type gameRecord struct {
	adapter.GameHeader
	Player1Score int      `json:"player1_score"`
	Player2Score int      `json:"player2_score"`
	Board        [][]Tile `json:"board"`
}

type lastMove struct {
	UserID      int64  `json:"user_id"`
	MoveType    string `json:"move_type"`
	TilesPlayed string `json:"tiles_played"`
}

type gameResponse struct {
	Game           *gameRecord `json:"game"`
	Rack           []Tile      `json:"rack"`
	IsYourTurn     bool        `json:"is_your_turn"`
	TilesRemaining int         `json:"tiles_remaining"`
	LastMove       *lastMove   `json:"last_move"`
}

func emptyBoard() [][]Tile {
	board := make([][]Tile, BoardSize)
	for i := range board {
		board[i] = make([]Tile, BoardSize)
	}
	return board
}

func lastMoveCells(m *lastMove) []domain.Cell {
	if m == nil || m.MoveType != "play" || m.TilesPlayed == "" {
		return nil
	}
	var tiles []PlacedTile
	if err := json.Unmarshal([]byte(m.TilesPlayed), &tiles); err != nil {
		return nil
	}
	cells := make([]domain.Cell, 0, len(tiles))
	for _, t := range tiles {
		cells = append(cells, domain.Cell{Row: t.Row, Col: t.Col})
	}
	domain.SortCells(cells)
	return cells
}

func viewOf(session domain.GameSession) View {
	if v, ok := session.View.(View); ok {
		return v
	}
	return View{Board: emptyBoard()}
}
