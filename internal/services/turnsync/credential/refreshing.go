package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/platform/timeouts"
)

// RefreshingProvider exchanges a refresh token for new access tokens at
// POST {baseURL}/refresh. Concurrent refreshes share one request.
type RefreshingProvider struct {
	url    string
	client *http.Client
	skew   time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// Option configures a RefreshingProvider.
type Option func(*RefreshingProvider)

// WithHTTPClient sets the client used for refresh requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *RefreshingProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithSkew sets how long before expiry a token is refreshed proactively.
func WithSkew(skew time.Duration) Option {
	return func(p *RefreshingProvider) {
		p.skew = skew
	}
}

// WithNow overrides the clock used for expiry checks.
func WithNow(now func() time.Time) Option {
	return func(p *RefreshingProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewRefreshingProvider creates a provider seeded with the given tokens.
func NewRefreshingProvider(baseURL, accessToken, refreshToken string, opts ...Option) *RefreshingProvider {
	p := &RefreshingProvider{
		url:          strings.TrimRight(baseURL, "/") + "/refresh",
		client:       &http.Client{Timeout: timeouts.AuthorityRequest},
		skew:         timeouts.CredentialSkew,
		now:          time.Now,
		accessToken:  strings.TrimSpace(accessToken),
		refreshToken: strings.TrimSpace(refreshToken),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns the current access token, refreshing first when it is
// missing or about to expire.
func (p *RefreshingProvider) Token(ctx context.Context) (string, error) {
	p.mu.RLock()
	token := p.accessToken
	p.mu.RUnlock()
	if token != "" && !expiresWithin(token, p.now(), p.skew) {
		return token, nil
	}
	refreshed, err := p.Refresh(ctx)
	if err != nil {
		if token != "" && !expiresWithin(token, p.now(), 0) {
			return token, nil
		}
		return "", err
	}
	return refreshed, nil
}

// Refresh exchanges the refresh token for a new access token.
func (p *RefreshingProvider) Refresh(ctx context.Context) (string, error) {
	v, err, _ := p.group.Do("refresh", func() (any, error) {
		return p.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (p *RefreshingProvider) refresh(ctx context.Context) (string, error) {
	p.mu.RLock()
	refreshToken := p.refreshToken
	p.mu.RUnlock()
	if refreshToken == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "refresh token is not configured")
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeNetwork, "refresh request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			return "", apperrors.New(apperrors.CodeNetwork, "refresh returned "+resp.Status)
		}
		return "", apperrors.New(apperrors.CodeUnauthorized, "refresh returned "+resp.Status)
	}

	var result refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.Wrap(apperrors.CodeNetwork, "decode refresh response", err)
	}
	if strings.TrimSpace(result.AccessToken) == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "refresh response has no access token")
	}

	p.mu.Lock()
	p.accessToken = result.AccessToken
	if result.RefreshToken != "" {
		p.refreshToken = result.RefreshToken
	}
	p.mu.Unlock()
	return result.AccessToken, nil
}
