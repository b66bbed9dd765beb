// Package codebreak adapts the code-breaking game: each player sets a
// secret sequence of colors, then the players alternate guesses.
package codebreak

import (
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// CodeLength is the number of slots in a secret or guess.
const CodeLength = 4

// DefaultPaletteSize applies when the authority omits num_colors.
const DefaultPaletteSize = 6

// Guess is a committed guess with the authority's feedback.
type Guess struct {
	Guess       []int `json:"guess"`
	Correct     int   `json:"correct"`
	Misplaced   int   `json:"misplaced"`
	GuessNumber int   `json:"guess_number"`
}

// View is the session payload of a code-breaking game.
type View struct {
	MySecret       []int
	OpponentSecret []int
	MyGuesses      []Guess
	TheirGuesses   []Guess
	Round          int
}

type gameRecord struct {
	adapter.GameHeader
	MaxGuesses   int  `json:"max_guesses"`
	NumColors    int  `json:"num_colors"`
	AllowRepeats bool `json:"allow_repeats"`
}

type gameResponse struct {
	Game           *gameRecord `json:"game"`
	MySecret       []int       `json:"my_secret"`
	OpponentSecret []int       `json:"opponent_secret"`
	MyGuesses      []Guess     `json:"my_guesses"`
	TheirGuesses   []Guess     `json:"their_guesses"`
	SecretSet      bool        `json:"secret_set"`
	IsYourTurn     bool        `json:"is_your_turn"`
	Phase          string      `json:"phase"`
	Round          int         `json:"round"`
}

func viewOf(session domain.GameSession) View {
	v, _ := session.View.(View)
	return v
}

func slot(i int) domain.Cell {
	return domain.Cell{Row: 0, Col: i}
}
