package codebreak

import (
	"encoding/json"
	"strconv"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Adapter implements adapter.Adapter for the code-breaking game.
type Adapter struct{}

// New returns the code-breaking adapter.
func New() Adapter {
	return Adapter{}
}

// Variant returns domain.VariantCodeBreak.
func (Adapter) Variant() domain.Variant { return domain.VariantCodeBreak }

// Route returns the authority collection name.
func (Adapter) Route() string { return "mastermind" }

// DecodeState normalizes a game response.
func (Adapter) DecodeState(raw json.RawMessage, localUserID int64) (domain.GameSession, error) {
	var resp gameResponse
	if err := adapter.Decode(raw, &resp); err != nil {
		return domain.GameSession{}, err
	}
	if resp.Game == nil {
		return domain.GameSession{}, apperrors.New(apperrors.CodeUnknown, "game state has no game record")
	}
	if resp.Phase != "" {
		resp.Game.Status = resp.Phase
	}
	session := resp.Game.Session(domain.VariantCodeBreak, localUserID)
	session.Ready = resp.SecretSet
	if session.Phase == domain.PhaseSetup {
		session.TurnOwner = domain.SetupTurnOwner(session.LocalSeat, resp.SecretSet)
	}
	palette := resp.Game.NumColors
	if palette <= 0 {
		palette = DefaultPaletteSize
	}
	session.Rules = domain.Rules{
		Rows:         1,
		Cols:         CodeLength,
		CodeLength:   CodeLength,
		PaletteSize:  palette,
		AllowRepeats: resp.Game.AllowRepeats,
		MaxGuesses:   resp.Game.MaxGuesses,
	}
	session.View = View{
		MySecret:       resp.MySecret,
		OpponentSecret: resp.OpponentSecret,
		MyGuesses:      resp.MyGuesses,
		TheirGuesses:   resp.TheirGuesses,
		Round:          resp.Round,
	}
	return session, nil
}

// DescribeSlots lists the sequence slots. Committed state never fills them.
func (Adapter) DescribeSlots(domain.GameSession) []domain.Slot {
	slots := make([]domain.Slot, CodeLength)
	for i := range slots {
		slots[i] = domain.Slot{At: slot(i)}
	}
	return slots
}

// CheckSelection rejects colors outside the palette and, without repeats,
// colors already in the sequence.
func (Adapter) CheckSelection(session domain.GameSession, move domain.Move, selection domain.Selection) error {
	return checkColor(session.Rules, move, selection.Resource)
}

func checkColor(rules domain.Rules, move domain.Move, r domain.Resource) error {
	if r.Kind != domain.ResourcePalette || r.Index < 0 || r.Index >= rules.PaletteSize {
		return adapter.Unavailable(r, "not in the palette")
	}
	if !rules.AllowRepeats && move.Consumed(r) {
		return adapter.Unavailable(r, "repeats are not allowed")
	}
	return nil
}

// PlaceAt toggles a color in a slot. A filled slot is cleared first so a
// second toggle is needed to put a new color there.
func (Adapter) PlaceAt(session domain.GameSession, move domain.Move, selection *domain.Selection, position domain.Cell) (domain.Move, error) {
	if next, _, ok := move.Remove(position); ok {
		return next, nil
	}
	if err := adapter.RequireSelection(selection); err != nil {
		return move, err
	}
	if !position.In(1, CodeLength) {
		return move, adapter.OutOfBounds(position)
	}
	if err := checkColor(session.Rules, move, selection.Resource); err != nil {
		return move, err
	}
	return move.Append(domain.PendingAction{
		At:       position,
		Span:     []domain.Cell{position},
		Value:    strconv.Itoa(selection.Resource.Index),
		Resource: selection.Resource,
		Shared:   session.Rules.AllowRepeats,
	})
}

// NextPosition returns the first empty slot.
func (Adapter) NextPosition(_ domain.GameSession, move domain.Move) (domain.Cell, bool) {
	for i := 0; i < CodeLength; i++ {
		if move.IndexAt(slot(i)) < 0 {
			return slot(i), true
		}
	}
	return domain.Cell{}, false
}

// IsLocallyLegal requires every slot filled and, when guessing, a guess
// left.
func (Adapter) IsLocallyLegal(session domain.GameSession, move domain.Move) domain.Legality {
	for i := 0; i < CodeLength; i++ {
		if move.IndexAt(slot(i)) < 0 {
			return domain.Illegal("fill every slot")
		}
	}
	if !session.Rules.AllowRepeats {
		seen := make(map[int]bool, CodeLength)
		for _, a := range move.Actions() {
			if seen[a.Resource.Index] {
				return domain.Illegal("repeats are not allowed")
			}
			seen[a.Resource.Index] = true
		}
	}
	if session.Phase == domain.PhaseActive && session.Rules.MaxGuesses > 0 &&
		len(viewOf(session).MyGuesses) >= session.Rules.MaxGuesses {
		return domain.Illegal("no guesses left")
	}
	return domain.Legal
}

// Present highlights the filled slots.
func (Adapter) Present(_ domain.GameSession, move domain.Move) domain.Presentation {
	return domain.Presentation{Highlights: adapter.PendingCells(move)}
}

func sequence(move domain.Move) ([]int, error) {
	code := make([]int, CodeLength)
	for i := range code {
		action, ok := move.At(slot(i))
		if !ok {
			return nil, apperrors.New(apperrors.CodeInvalidMove, "fill every slot")
		}
		code[i] = action.Resource.Index
	}
	return code, nil
}

type secretRequest struct {
	Code []int `json:"code"`
}

type guessRequest struct {
	Guess []int `json:"guess"`
}

// ToCommitPayload builds the secret request during setup and the guess
// request afterwards.
func (Adapter) ToCommitPayload(session domain.GameSession, move domain.Move) (domain.Payload, error) {
	code, err := sequence(move)
	if err != nil {
		return domain.Payload{}, err
	}
	if session.Phase == domain.PhaseSetup {
		return adapter.Encode("secret", secretRequest{Code: code})
	}
	return adapter.Encode("guess", guessRequest{Guess: code})
}

// PreviewPayload reports no remote preview.
func (Adapter) PreviewPayload(domain.GameSession, domain.Move) (domain.Payload, bool) {
	return domain.Payload{}, false
}
