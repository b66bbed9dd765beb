// Package credential supplies bearer tokens to authority requests and
// refreshes them when the authority rejects them or they near expiry.
package credential

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
)

// Provider is the token holder shared by every authority request.
//
// Refresh is called at most once per rejected request; implementations
// must be safe for concurrent use.
type Provider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticProvider serves a fixed token and cannot refresh it.
type StaticProvider struct {
	mu    sync.RWMutex
	token string
}

// NewStaticProvider returns a provider for token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: strings.TrimSpace(token)}
}

// Token returns the configured token.
func (p *StaticProvider) Token(context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.token == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "access token is not configured")
	}
	return p.token, nil
}

// Refresh always fails; a static token has no refresh path.
func (p *StaticProvider) Refresh(context.Context) (string, error) {
	return "", apperrors.New(apperrors.CodeUnauthorized, "static access token cannot be refreshed")
}

// Set replaces the token, e.g. after the user signs in again.
func (p *StaticProvider) Set(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = strings.TrimSpace(token)
}
