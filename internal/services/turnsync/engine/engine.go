package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v5"

	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine is closed")

// Engine synchronizes one game.
type Engine struct {
	gameID    string
	adapter   adapter.Adapter
	authority Authority
	opts      Options

	// ctx bounds background work and is canceled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	session    *domain.GameSession
	builder    Builder
	preview    previewState
	poll       pollScheduler
	announce   announcement
	submitting bool
	syncErr    error
	rejection  error

	// movePhase is the phase the provisional move was built in.
	movePhase domain.Phase
	// resetDeferred marks a snapshot replaced while a submission was
	// outstanding; the move is settled once the submission ends.
	resetDeferred bool
	// arrangement is the display order of private resources; nil is the
	// natural order.
	arrangement []int
}

// New creates an engine for gameID. Call Start to load the first snapshot.
func New(gameID string, a adapter.Adapter, auth Authority, opts Options) (*Engine, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, errors.New("game id is required")
	}
	if a == nil {
		return nil, errors.New("adapter is required")
	}
	if auth == nil {
		return nil, errors.New("authority is required")
	}
	opts = opts.withDefaults(a.Variant())
	ctx, cancel := context.WithCancel(context.Background())
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.PollInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = opts.PollMaxBackoff
	b.Reset()
	return &Engine{
		gameID:    gameID,
		adapter:   a,
		authority: auth,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		poll:      pollScheduler{state: PollIdle, backoff: b, delay: opts.PollInterval},
		announce:  announcement{seen: make(map[string]bool)},
	}, nil
}

// GameID returns the game this engine serves.
func (e *Engine) GameID() string { return e.gameID }

// Variant returns the adapter's variant.
func (e *Engine) Variant() domain.Variant { return e.adapter.Variant() }

// Start loads the first snapshot. Polling begins even when the first load
// fails so the engine recovers on its own.
func (e *Engine) Start(ctx context.Context) error {
	_, err := e.Refresh(ctx)
	return err
}

// Close stops every timer and makes in-flight completions no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.poll.stop()
	e.preview.cancel()
	e.announce.clear()
	e.mu.Unlock()
	e.cancel()
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Done is closed when the engine is closed.
func (e *Engine) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *Engine) notify() {
	if e.opts.OnChange == nil {
		return
	}
	e.opts.OnChange(e.View())
}
