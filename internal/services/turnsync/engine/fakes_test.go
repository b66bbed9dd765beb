package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/turnsync/internal/services/turnsync/authority"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, running due callbacks in order on the
// calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeAuthority struct {
	mu          sync.Mutex
	state       json.RawMessage
	stateErr    error
	gets        int
	previews    []domain.Payload
	previewResp authority.PreviewResponse
	previewErr  error
	commits     []domain.Payload
	commitResp  json.RawMessage
	commitErr   error
	onGet       func()
	onPreview   func()
	onCommit    func()
	nextState   json.RawMessage
}

func (f *fakeAuthority) setState(raw json.RawMessage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = raw
	f.stateErr = err
}

func (f *fakeAuthority) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeAuthority) GetState(_ context.Context, _, _ string) (json.RawMessage, error) {
	f.mu.Lock()
	f.gets++
	hook := f.onGet
	raw, err := f.state, f.stateErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return raw, err
}

func (f *fakeAuthority) Preview(_ context.Context, _, _ string, payload domain.Payload) (authority.PreviewResponse, error) {
	f.mu.Lock()
	f.previews = append(f.previews, payload)
	hook := f.onPreview
	resp, err := f.previewResp, f.previewErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return resp, err
}

func (f *fakeAuthority) Commit(_ context.Context, _, _ string, payload domain.Payload) (json.RawMessage, error) {
	f.mu.Lock()
	f.commits = append(f.commits, payload)
	hook := f.onCommit
	resp, err := f.commitResp, f.commitErr
	if err == nil && f.nextState != nil {
		f.state = f.nextState
	}
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return resp, err
}

// codebreakState renders a code-breaking game for local user 1.
func codebreakState(status string, currentTurn int64, secretSet bool) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"game":{"id":5,"player1_id":1,"player2_id":2,"current_turn":%d,
		"status":%q,"max_guesses":10,"num_colors":6,"allow_repeats":false},
		"my_guesses":[],"their_guesses":[],"secret_set":%t,"phase":%q,"round":1}`,
		currentTurn, status, secretSet, status))
}

func wordgridState(currentTurn int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"game":{"id":12,"player1_id":1,"player2_id":2,"current_turn":%d,"status":"active"},
		"rack":[{"letter":"C","value":3},{"letter":"A","value":1},{"letter":"T","value":1}],
		"tiles_remaining":80}`, currentTurn))
}

// pairmatchState renders a 2x2 tile-matching game whose latest move is an
// unmatched reveal by the opponent.
func pairmatchState(moveID, currentTurn int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"game":{"id":9,"player1_id":1,"player2_id":2,"current_turn":%d,"status":"active","board_size":"4x5"},
		"board":[[-1,-1],[-1,-1]],"full_board":[[3,4],[4,3]],
		"moves":[{"id":%d,"user_id":2,"row1":0,"col1":0,"row2":1,"col2":1,"tile1":3,"tile2":4,"matched":false}]}`, currentTurn, moveID))
}

// wordgridResigned renders a word game the opponent won by resignation
// while current_turn still names the local user.
func wordgridResigned() json.RawMessage {
	return json.RawMessage(`{"game":{"id":12,"player1_id":1,"player2_id":2,"current_turn":1,"status":"resigned","winner_id":2},
		"rack":[{"letter":"C","value":3}],"tiles_remaining":80}`)
}
