package engine

import (
	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// checkLocked runs turn gating and the adapter's local legality. It never
// touches the network.
func (e *Engine) checkLocked() domain.Legality {
	if err := e.gateLocked(); err != nil {
		return domain.Illegal(err.Error())
	}
	return e.adapter.IsLocallyLegal(*e.session, e.builder.Move())
}

// gateLocked reports whether the local seat may edit or commit now.
func (e *Engine) gateLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case e.session == nil:
		return apperrors.New(apperrors.CodeNotFound, "game not loaded")
	case e.session.Completed():
		return apperrors.New(apperrors.CodeGameCompleted, "game is already completed")
	case !e.session.IsMyTurn():
		return apperrors.New(apperrors.CodeNotYourTurn, "not your turn")
	default:
		return nil
	}
}

// validateLocked is the commit-time check: gating first, then legality as
// an INVALID_MOVE carrying the reason.
func (e *Engine) validateLocked() error {
	if err := e.gateLocked(); err != nil {
		return err
	}
	legality := e.adapter.IsLocallyLegal(*e.session, e.builder.Move())
	if !legality.Legal {
		return apperrors.WithMetadata(apperrors.CodeInvalidMove, legality.Reason,
			map[string]string{"Reason": legality.Reason})
	}
	return nil
}
