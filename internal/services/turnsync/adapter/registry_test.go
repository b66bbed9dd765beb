package adapter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

type stubAdapter struct {
	variant domain.Variant
}

func (s stubAdapter) Variant() domain.Variant { return s.variant }
func (s stubAdapter) Route() string          { return string(s.variant) }
func (s stubAdapter) DecodeState(json.RawMessage, int64) (domain.GameSession, error) {
	return domain.GameSession{}, nil
}
func (s stubAdapter) DescribeSlots(domain.GameSession) []domain.Slot { return nil }
func (s stubAdapter) PlaceAt(_ domain.GameSession, m domain.Move, _ *domain.Selection, _ domain.Cell) (domain.Move, error) {
	return m, nil
}
func (s stubAdapter) IsLocallyLegal(domain.GameSession, domain.Move) domain.Legality {
	return domain.Legal
}
func (s stubAdapter) Present(domain.GameSession, domain.Move) domain.Presentation {
	return domain.Presentation{}
}
func (s stubAdapter) ToCommitPayload(domain.GameSession, domain.Move) (domain.Payload, error) {
	return domain.Payload{}, nil
}
func (s stubAdapter) PreviewPayload(domain.GameSession, domain.Move) (domain.Payload, bool) {
	return domain.Payload{}, false
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(stubAdapter{variant: domain.VariantPairMatch}, stubAdapter{variant: domain.VariantCodeBreak})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if got := r.Variants(); len(got) != 2 || got[0] != domain.VariantCodeBreak {
		t.Fatalf("variants = %v", got)
	}
	if _, err := r.Get(domain.VariantPairMatch); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := r.Get(domain.VariantWordGrid); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
	if err := r.Register(stubAdapter{variant: domain.VariantPairMatch}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
	if err := r.Register(nil); !errors.Is(err, ErrAdapterRequired) {
		t.Fatalf("err = %v, want ErrAdapterRequired", err)
	}
	if err := r.Register(stubAdapter{}); !errors.Is(err, ErrVariantRequired) {
		t.Fatalf("err = %v, want ErrVariantRequired", err)
	}
}

func TestGameHeaderSession(t *testing.T) {
	winner := int64(2)
	tests := []struct {
		name   string
		header GameHeader
		check  func(t *testing.T, s domain.GameSession)
	}{
		{
			name:   "active my turn",
			header: GameHeader{ID: 7, Player1ID: 1, Player2ID: 2, CurrentTurn: 1, Status: "active"},
			check: func(t *testing.T, s domain.GameSession) {
				if s.GameID != "7" || !s.IsMyTurn() {
					t.Fatalf("session = %+v", s)
				}
			},
		},
		{
			name:   "completed",
			header: GameHeader{ID: 7, Player1ID: 1, Player2ID: 2, CurrentTurn: 1, Status: "completed", WinnerID: &winner},
			check: func(t *testing.T, s domain.GameSession) {
				if s.Outcome == nil || s.Outcome.Winner != domain.SeatTwo || s.IsMyTurn() {
					t.Fatalf("session = %+v", s)
				}
			},
		},
		{
			name:   "setup leaves turn unset",
			header: GameHeader{ID: 7, Player1ID: 1, Player2ID: 2, CurrentTurn: 1, Status: "setup"},
			check: func(t *testing.T, s domain.GameSession) {
				if s.TurnOwner != domain.SeatNone {
					t.Fatalf("turn owner = %v", s.TurnOwner)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.header.Session(domain.VariantWordGrid, 1))
		})
	}
}
