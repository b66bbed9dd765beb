package engine

import "github.com/louisbranch/turnsync/internal/services/turnsync/domain"

// View is a read-only snapshot for rendering.
type View struct {
	GameID    string
	Variant   domain.Variant
	PollState PollState
	// Session is nil until the first successful load.
	Session      *domain.GameSession
	Move         domain.Move
	Selection    *domain.Selection
	Slots        []domain.Slot
	Presentation domain.Presentation
	Legality     domain.Legality
	// CanCommit combines turn gating, local legality, the submission lock
	// and, for remote previews, a valid current preview.
	CanCommit  bool
	Preview    *domain.PreviewResult
	Submitting bool
	// Announcement is the opponent action or server reveal currently
	// highlighted. Edits are refused while it is set.
	Announcement []domain.Slot
	// Arrangement is the display order of private resources (Arrangement[i]
	// is the resource index shown at position i); nil is the natural order.
	Arrangement []int
	// SyncError is the last refresh failure; cleared by the next success.
	SyncError error
	// Rejection is the last commit or action failure; cleared by the next
	// edit or successful submission.
	Rejection error
}

// View returns the current snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	v := View{
		GameID:     e.gameID,
		Variant:    e.adapter.Variant(),
		PollState:  e.poll.state,
		Move:       e.builder.Move(),
		Submitting: e.submitting,
		SyncError:  e.syncErr,
		Rejection:  e.rejection,
	}
	if sel, ok := e.builder.Selection(); ok {
		v.Selection = &sel
	}
	if len(e.announce.slots) > 0 {
		v.Announcement = append([]domain.Slot(nil), e.announce.slots...)
	}
	if len(e.arrangement) > 0 {
		v.Arrangement = append([]int(nil), e.arrangement...)
	}
	if e.session == nil {
		v.Legality = domain.Illegal("game not loaded")
		return v
	}
	session := *e.session
	v.Session = &session
	v.Slots = e.adapter.DescribeSlots(session)
	v.Presentation = e.adapter.Present(session, v.Move)
	v.Legality = e.checkLocked()
	if p := e.preview.current(v.Move.Hash()); p != nil {
		v.Preview = p
	}
	v.CanCommit = v.Legality.Legal && !e.submitting && e.previewAllowsCommit(session, v.Move, v.Preview)
	return v
}

// previewAllowsCommit requires a valid preview for the current move when
// the variant previews remotely. Local-only variants rely on legality.
func (e *Engine) previewAllowsCommit(session domain.GameSession, move domain.Move, p *domain.PreviewResult) bool {
	if _, remote := e.adapter.PreviewPayload(session, move); !remote {
		return true
	}
	return p != nil && p.Valid
}
