// Package pairmatch adapts the tile-matching game: flip two face-down
// tiles per reveal; a match keeps them face up and grants another turn.
package pairmatch

import (
	"strconv"
	"strings"

	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// FaceDown is the board value of a tile that has not been matched.
const FaceDown = -1

// MoveRecord is one committed reveal, newest first in the view.
type MoveRecord struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"user_id"`
	Row1    int   `json:"row1"`
	Col1    int   `json:"col1"`
	Row2    int   `json:"row2"`
	Col2    int   `json:"col2"`
	Tile1   int   `json:"tile1"`
	Tile2   int   `json:"tile2"`
	Matched bool  `json:"matched"`
}

// RevealResult is the authority's answer to a reveal.
type RevealResult struct {
	Tile1     int  `json:"tile1"`
	Tile2     int  `json:"tile2"`
	Matched   bool `json:"matched"`
	ExtraTurn bool `json:"extra_turn"`
	GameOver  bool `json:"game_over"`
}

// View is the session payload of a tile-matching game.
type View struct {
	Board [][]int
	// FullBoard holds every tile id; it is only sent to the player on turn.
	FullBoard    [][]int
	Moves        []MoveRecord
	Scores       [2]int
	TotalPairs   int
	MatchedCount int
	localUserID  int64
}

// Matched reports whether the tile at c is already face up for good.
func (v View) Matched(c domain.Cell) bool {
	value, ok := at(v.Board, c)
	return ok && value != FaceDown
}

func at(board [][]int, c domain.Cell) (int, bool) {
	if c.Row < 0 || c.Row >= len(board) || c.Col < 0 || c.Col >= len(board[c.Row]) {
		return 0, false
	}
	return board[c.Row][c.Col], true
}

type gameRecord struct {
	adapter.GameHeader
	BoardSize    string `json:"board_size"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
}

type gameResponse struct {
	Game         *gameRecord  `json:"game"`
	Board        [][]int      `json:"board"`
	FullBoard    [][]int      `json:"full_board"`
	IsYourTurn   bool         `json:"is_your_turn"`
	Moves        []MoveRecord `json:"moves"`
	TotalPairs   int          `json:"total_pairs"`
	MatchedCount int          `json:"matched_count"`
}

// dimensions prefers the board itself and falls back to "RxC".
func dimensions(board [][]int, size string) (int, int) {
	if len(board) > 0 {
		return len(board), len(board[0])
	}
	rows, cols, ok := strings.Cut(size, "x")
	if !ok {
		return 0, 0
	}
	r, err1 := strconv.Atoi(rows)
	c, err2 := strconv.Atoi(cols)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return r, c
}

func viewOf(session domain.GameSession) View {
	v, _ := session.View.(View)
	return v
}
