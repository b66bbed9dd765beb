package turnsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/platform/errors/i18n"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter/codebreak"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter/fleetgrid"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter/pairmatch"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter/wordgrid"
	"github.com/louisbranch/turnsync/internal/services/turnsync/authority"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
	"github.com/louisbranch/turnsync/internal/services/turnsync/engine"
)

// WatchOptions injects collaborators for tests.
type WatchOptions struct {
	HTTPClient *http.Client
	Logf       func(string, ...any)
}

// NewRegistry registers every supported variant.
func NewRegistry() (*adapter.Registry, error) {
	return adapter.NewRegistry(wordgrid.New(), fleetgrid.New(), codebreak.New(), pairmatch.New())
}

// Watch follows every configured game until all are completed or ctx is
// canceled. Without configured games it follows the caller's open games of
// every variant. A game that cannot be found or authorized stops the watch.
func Watch(ctx context.Context, cfg Config, opts WatchOptions) error {
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	userID, err := cfg.LocalUserID()
	if err != nil {
		return err
	}
	httpClient := cfg.HTTPClient(opts.HTTPClient)
	provider, err := cfg.Provider(httpClient)
	if err != nil {
		return err
	}
	client, err := authority.New(cfg.AuthorityURL, provider, authority.WithHTTPClient(httpClient))
	if err != nil {
		return err
	}
	registry, err := NewRegistry()
	if err != nil {
		return err
	}
	var refs []GameRef
	if len(cfg.Games) > 0 {
		refs, err = ParseGames(cfg.Games)
	} else {
		refs, err = discoverGames(ctx, client, registry)
	}
	if err != nil {
		return err
	}
	catalog := i18n.GetCatalog(cfg.Locale)

	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		a, err := registry.Get(ref.Variant)
		if err != nil {
			return fmt.Errorf("game %s: %w", ref, err)
		}
		w := &watcher{
			ref:       ref,
			route:     a.Route(),
			catalog:   catalog,
			logf:      logf,
			timeout:   cfg.RequestTimeout,
			completed: make(chan struct{}),
		}
		if ref.Variant == domain.VariantWordGrid {
			w.words = client
			w.turns = make(chan struct{}, 1)
		}
		e, err := engine.New(ref.ID, a, client, engine.Options{
			LocalUserID:     userID,
			PollInterval:    cfg.PollInterval,
			PreviewDebounce: cfg.PreviewDebounce,
			RequestTimeout:  cfg.RequestTimeout,
			Logf:            logf,
			OnChange:        w.observe,
		})
		if err != nil {
			return fmt.Errorf("game %s: %w", ref, err)
		}
		g.Go(func() error {
			defer e.Close()
			return w.run(gctx, e)
		})
	}
	return g.Wait()
}

// discoverGames lists the caller's games awaiting either player for every
// registered variant.
func discoverGames(ctx context.Context, client *authority.Client, registry *adapter.Registry) ([]GameRef, error) {
	var refs []GameRef
	for _, variant := range registry.Variants() {
		a, err := registry.Get(variant)
		if err != nil {
			return nil, err
		}
		list, err := client.ListGames(ctx, a.Route())
		if err != nil {
			return nil, fmt.Errorf("list %s games: %w", variant, err)
		}
		for _, game := range append(list.YourTurn, list.TheirTurn...) {
			refs = append(refs, GameRef{Variant: variant, ID: strconv.FormatInt(game.ID, 10)})
		}
	}
	if len(refs) == 0 {
		return nil, errors.New("no open games to watch")
	}
	return refs, nil
}

// wordReader reads the side panels of a word game.
type wordReader interface {
	TileBag(ctx context.Context, route, id string) (authority.TileBag, error)
	History(ctx context.Context, route, id string) ([]authority.HistoryItem, error)
}

type watcher struct {
	ref     GameRef
	route   string
	catalog *i18n.Catalog
	logf    func(string, ...any)
	timeout time.Duration
	// words is set for word games; turns wakes run when the local turn
	// starts so the bag and last play are reported.
	words wordReader
	turns chan struct{}

	mu        sync.Mutex
	lastState engine.PollState
	lastTurn  domain.Seat
	lastErr   string
	done      bool
	completed chan struct{}
}

func (w *watcher) run(ctx context.Context, e *engine.Engine) error {
	if err := e.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		switch apperrors.CodeOf(err) {
		case apperrors.CodeNotFound, apperrors.CodeUnauthorized:
			return fmt.Errorf("game %s: %w", w.ref, err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.completed:
			return nil
		case <-w.turns:
			w.reportWords(ctx)
		}
	}
}

func (w *watcher) reportWords(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	bag, err := w.words.TileBag(ctx, w.route, w.ref.ID)
	if err != nil {
		w.logf("%s: tile bag: %s", w.ref, localize(w.catalog, err))
		return
	}
	w.logf("%s: %d tiles left in the bag", w.ref, bag.Total)
	history, err := w.words.History(ctx, w.route, w.ref.ID)
	if err != nil {
		w.logf("%s: history: %s", w.ref, localize(w.catalog, err))
		return
	}
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	line := fmt.Sprintf("%s: last move #%d %s by %s for %d", w.ref, last.MoveNumber, last.MoveType, last.PlayerName, last.Score)
	if len(last.WordsFormed) > 0 {
		line += " (" + strings.Join(last.WordsFormed, ", ") + ")"
	}
	w.logf("%s", line)
}

// observe logs poll state and turn transitions, and sync errors once per
// distinct message.
func (w *watcher) observe(v engine.View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v.SyncError != nil {
		if msg := localize(w.catalog, v.SyncError); msg != w.lastErr {
			w.lastErr = msg
			w.logf("%s: %s", w.ref, msg)
		}
	} else {
		w.lastErr = ""
	}
	if v.Session == nil {
		return
	}
	if v.PollState != w.lastState || v.Session.TurnOwner != w.lastTurn {
		w.lastState = v.PollState
		w.lastTurn = v.Session.TurnOwner
		w.logf("%s: %s", w.ref, v.PollState)
		if v.PollState == engine.PollActiveMyTurn && w.turns != nil {
			select {
			case w.turns <- struct{}{}:
			default:
			}
		}
	}
	if v.PollState == engine.PollCompleted && !w.done {
		w.done = true
		w.logf("%s: %s", w.ref, outcome(*v.Session))
		close(w.completed)
	}
}

func localize(catalog *i18n.Catalog, err error) string {
	return catalog.Format(string(apperrors.CodeOf(err)), apperrors.MetadataOf(err))
}

func outcome(session domain.GameSession) string {
	switch {
	case session.Outcome == nil:
		return "game over"
	case session.Outcome.Draw:
		return "draw"
	case session.Outcome.Winner == session.LocalSeat:
		return "you won"
	default:
		return "you lost"
	}
}
