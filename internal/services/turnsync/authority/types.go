package authority

// GameSummary is one entry of a games list.
type GameSummary struct {
	ID          int64  `json:"id"`
	Player1ID   int64  `json:"player1_id"`
	Player2ID   int64  `json:"player2_id"`
	CurrentTurn int64  `json:"current_turn"`
	Status      string `json:"status"`
	WinnerID    *int64 `json:"winner_id,omitempty"`
}

// GameList groups the caller's games by whose move it is.
type GameList struct {
	YourTurn  []GameSummary `json:"your_turn"`
	TheirTurn []GameSummary `json:"their_turn"`
	Completed []GameSummary `json:"completed"`
}

// PreviewResponse is the authority's evaluation of a candidate move.
type PreviewResponse struct {
	Valid bool     `json:"valid"`
	Score int      `json:"score"`
	Words []string `json:"words"`
	Error string   `json:"error,omitempty"`
}

// TileBag reports remaining tile counts by letter; "?" counts blanks.
type TileBag struct {
	Tiles map[string]int `json:"tiles"`
	Total int            `json:"total"`
}

// HistoryItem is one committed move in a word game.
type HistoryItem struct {
	MoveNumber  int      `json:"move_number"`
	PlayerName  string   `json:"player_name"`
	MoveType    string   `json:"move_type"`
	WordsFormed []string `json:"words_formed,omitempty"`
	Score       int      `json:"score"`
	CreatedAt   string   `json:"created_at"`
}

type historyResponse struct {
	History []HistoryItem `json:"history"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
