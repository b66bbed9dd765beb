// Package fleetgrid adapts the 10×10 targeting game: a setup phase that
// places a fixed fleet, then alternating single shots.
package fleetgrid

import (
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// BoardSize is the side length of both grids.
const BoardSize = 10

// Cell states reported by the authority.
const (
	CellEmpty = "empty"
	CellShip  = "ship"
	CellHit   = "hit"
	CellMiss  = "miss"
)

// Fleet is the fixed set of segments every player places, in submission
// order.
var Fleet = []domain.FleetSegment{
	{Name: "carrier", Length: 5},
	{Name: "battleship", Length: 4},
	{Name: "cruiser", Length: 3},
	{Name: "submarine", Length: 3},
	{Name: "destroyer", Length: 2},
}

// Ship is a placed fleet segment.
type Ship struct {
	Type       string `json:"type"`
	StartRow   int    `json:"start_row"`
	StartCol   int    `json:"start_col"`
	Horizontal bool   `json:"horizontal"`
	Size       int    `json:"size"`
}

// View is the session payload of a targeting game.
type View struct {
	MyBoard             [][]string
	EnemyBoard          [][]string
	MyShips             []Ship
	EnemyShipsRemaining int
}

// Shot reports whether the enemy grid already records a shot at c.
func (v View) Shot(c domain.Cell) bool {
	s := cellAt(v.EnemyBoard, c)
	return s == CellHit || s == CellMiss
}

func cellAt(board [][]string, c domain.Cell) string {
	if c.Row < 0 || c.Row >= len(board) || c.Col < 0 || c.Col >= len(board[c.Row]) {
		return ""
	}
	return board[c.Row][c.Col]
}

type gameResponse struct {
	Game                *adapter.GameHeader `json:"game"`
	MyBoard             [][]string          `json:"my_board"`
	EnemyBoard          [][]string          `json:"enemy_board"`
	MyShips             []Ship              `json:"my_ships"`
	IsYourTurn          bool                `json:"is_your_turn"`
	ShipsReady          bool                `json:"ships_ready"`
	Phase               string              `json:"phase"`
	EnemyShipsRemaining int                 `json:"enemy_ships_remaining"`
}

func viewOf(session domain.GameSession) View {
	v, _ := session.View.(View)
	return v
}

func fleetOf(session domain.GameSession) []domain.FleetSegment {
	if len(session.Rules.Fleet) > 0 {
		return session.Rules.Fleet
	}
	return Fleet
}
