package engine

import (
	"context"
	"encoding/json"
	"log"
	"math/rand/v2"
	"time"

	"github.com/louisbranch/turnsync/internal/platform/timeouts"
	"github.com/louisbranch/turnsync/internal/services/turnsync/authority"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Authority is the subset of the authority client the engine uses.
type Authority interface {
	GetState(ctx context.Context, route, id string) (json.RawMessage, error)
	Preview(ctx context.Context, route, id string, payload domain.Payload) (authority.PreviewResponse, error)
	Commit(ctx context.Context, route, id string, payload domain.Payload) (json.RawMessage, error)
}

// AnnouncementDuration is how long an opponent action stays highlighted.
const AnnouncementDuration = 2 * time.Second

// wordGridPollInterval is the slower default for word games, whose turns
// take longer.
const wordGridPollInterval = 8 * time.Second

// Options configures an Engine. Zero values select defaults.
type Options struct {
	LocalUserID     int64
	PollInterval    time.Duration
	PollMaxBackoff  time.Duration
	PreviewDebounce time.Duration
	RequestTimeout  time.Duration
	Announcement    time.Duration
	Clock           Clock
	Rand            *rand.Rand
	Logf            func(format string, args ...any)
	// OnChange receives a snapshot after every state change. It runs
	// outside the engine lock and must not block for long.
	OnChange func(View)
}

func (o Options) withDefaults(variant domain.Variant) Options {
	if o.PollInterval <= 0 {
		o.PollInterval = timeouts.PollInterval
		if variant == domain.VariantWordGrid {
			o.PollInterval = wordGridPollInterval
		}
	}
	if o.PollMaxBackoff < o.PollInterval {
		o.PollMaxBackoff = timeouts.PollMaxBackoff
		if o.PollMaxBackoff < o.PollInterval {
			o.PollMaxBackoff = o.PollInterval
		}
	}
	if o.PreviewDebounce <= 0 {
		o.PreviewDebounce = timeouts.PreviewDebounce
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = timeouts.AuthorityRequest
	}
	if o.Announcement <= 0 {
		o.Announcement = AnnouncementDuration
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Rand == nil {
		seed := uint64(o.Clock.Now().UnixNano())
		o.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if o.Logf == nil {
		o.Logf = log.Printf
	}
	return o
}
