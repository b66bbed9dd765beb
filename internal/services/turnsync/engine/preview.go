package engine

import (
	"context"

	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// PreviewUnavailable is the reason reported when the authority preview
// cannot be reached.
const PreviewUnavailable = "preview unavailable"

type previewState struct {
	// generation invalidates timers and in-flight requests on every change.
	generation uint64
	timer      Timer
	result     *domain.PreviewResult
}

func (p *previewState) cancel() {
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.result = nil
}

// current returns the result only when it belongs to the move hashed as key.
func (p *previewState) current(key uint64) *domain.PreviewResult {
	if p.result == nil || p.result.Key != key {
		return nil
	}
	out := *p.result
	out.Detail = append([]string(nil), p.result.Detail...)
	return &out
}

// schedulePreviewLocked reacts to a move change: empty moves clear the
// preview, illegal or local-only moves resolve immediately and remote
// previews are debounced.
func (e *Engine) schedulePreviewLocked() {
	e.preview.cancel()
	move := e.builder.Move()
	if move.Empty() || e.session == nil {
		return
	}
	key := move.Hash()
	legality := e.checkLocked()
	if !legality.Legal {
		e.preview.result = &domain.PreviewResult{Key: key, Reason: legality.Reason}
		return
	}
	payload, remote := e.adapter.PreviewPayload(*e.session, move)
	if !remote {
		e.preview.result = &domain.PreviewResult{Key: key, Valid: true}
		return
	}
	generation := e.preview.generation
	e.preview.timer = e.opts.Clock.AfterFunc(e.opts.PreviewDebounce, func() {
		e.firePreview(generation, key, payload)
	})
}

func (e *Engine) firePreview(generation, key uint64, payload domain.Payload) {
	e.mu.Lock()
	if e.closed || generation != e.preview.generation {
		e.mu.Unlock()
		return
	}
	e.preview.timer = nil
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(e.ctx, e.opts.RequestTimeout)
	defer cancel()
	resp, err := e.authority.Preview(ctx, e.adapter.Route(), e.gameID, payload)

	e.mu.Lock()
	if e.closed || generation != e.preview.generation || e.builder.Move().Hash() != key {
		e.mu.Unlock()
		e.opts.Logf("preview %s %s: dropped stale response", e.adapter.Variant(), e.gameID)
		return
	}
	if err != nil {
		e.preview.result = &domain.PreviewResult{Key: key, Reason: PreviewUnavailable}
		e.mu.Unlock()
		e.opts.Logf("preview %s %s: %v", e.adapter.Variant(), e.gameID, err)
		e.notify()
		return
	}
	e.preview.result = &domain.PreviewResult{
		Key:    key,
		Valid:  resp.Valid,
		Metric: resp.Score,
		Detail: append([]string(nil), resp.Words...),
		Reason: resp.Error,
		Remote: true,
	}
	e.mu.Unlock()
	e.notify()
}

// Preview returns the preview for the current move, if any.
func (e *Engine) Preview() (domain.PreviewResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.preview.current(e.builder.Move().Hash())
	if p == nil {
		return domain.PreviewResult{}, false
	}
	return *p, true
}
