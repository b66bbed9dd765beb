// Package turnsync parses watch command flags and runs one engine per game.
package turnsync

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/turnsync/internal/platform/cmd"
	"github.com/louisbranch/turnsync/internal/services/turnsync/credential"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Config holds watch command configuration.
type Config struct {
	AuthorityURL    string        `env:"TURNSYNC_AUTHORITY_URL" envDefault:"http://localhost:8080/api"`
	AccessToken     string        `env:"TURNSYNC_ACCESS_TOKEN"`
	RefreshToken    string        `env:"TURNSYNC_REFRESH_TOKEN"`
	UserID          int64         `env:"TURNSYNC_USER_ID"`
	Games           []string      `env:"TURNSYNC_GAMES" envSeparator:","`
	PollInterval    time.Duration `env:"TURNSYNC_POLL_INTERVAL"`
	PreviewDebounce time.Duration `env:"TURNSYNC_PREVIEW_DEBOUNCE" envDefault:"300ms"`
	RequestTimeout  time.Duration `env:"TURNSYNC_REQUEST_TIMEOUT" envDefault:"10s"`
	Locale          string        `env:"TURNSYNC_LOCALE" envDefault:"en-US"`
}

// GameRef names one watched game.
type GameRef struct {
	Variant domain.Variant
	ID      string
}

func (r GameRef) String() string {
	return string(r.Variant) + ":" + r.ID
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	games := strings.Join(cfg.Games, ",")
	fs.StringVar(&cfg.AuthorityURL, "authority-url", cfg.AuthorityURL, "Base URL of the game authority API")
	fs.StringVar(&cfg.AccessToken, "access-token", cfg.AccessToken, "Bearer access token")
	fs.StringVar(&cfg.RefreshToken, "refresh-token", cfg.RefreshToken, "Refresh token used to renew the access token")
	fs.Int64Var(&cfg.UserID, "user-id", cfg.UserID, "Local user id (defaults to the access token user_id claim)")
	fs.StringVar(&games, "games", games, "Comma-separated variant:id games to watch (defaults to every open game)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Refresh interval while waiting (0 selects the variant default)")
	fs.DurationVar(&cfg.PreviewDebounce, "preview-debounce", cfg.PreviewDebounce, "Delay before a remote move preview")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Authority request timeout")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for user-facing messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Games = splitList(games)
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseGames parses "variant:id" entries. Duplicates are rejected.
func ParseGames(entries []string) ([]GameRef, error) {
	refs := make([]GameRef, 0, len(entries))
	seen := make(map[GameRef]bool, len(entries))
	for _, entry := range entries {
		name, id, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("game %q: want variant:id", entry)
		}
		variant, ok := domain.ParseVariant(name)
		if !ok {
			return nil, fmt.Errorf("game %q: unknown variant %q", entry, name)
		}
		ref := GameRef{Variant: variant, ID: strings.TrimSpace(id)}
		if seen[ref] {
			return nil, fmt.Errorf("game %q is listed twice", entry)
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, errors.New("at least one game is required")
	}
	return refs, nil
}

// LocalUserID returns the configured user id or, when unset, the user_id
// claim of the access token.
func (c Config) LocalUserID() (int64, error) {
	if c.UserID > 0 {
		return c.UserID, nil
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return 0, errors.New("user id is required without an access token")
	}
	claims, err := credential.ParseClaims(c.AccessToken)
	if err != nil {
		return 0, fmt.Errorf("user id from access token: %w", err)
	}
	if claims.UserID <= 0 {
		return 0, errors.New("access token carries no user_id")
	}
	return claims.UserID, nil
}

// Provider builds the credential provider: refreshing when a refresh token
// is configured, static otherwise.
func (c Config) Provider(client *http.Client) (credential.Provider, error) {
	if strings.TrimSpace(c.RefreshToken) != "" {
		var opts []credential.Option
		if client != nil {
			opts = append(opts, credential.WithHTTPClient(client))
		}
		return credential.NewRefreshingProvider(c.AuthorityURL, c.AccessToken, c.RefreshToken, opts...), nil
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, errors.New("an access or refresh token is required")
	}
	return credential.NewStaticProvider(c.AccessToken), nil
}

// HTTPClient returns the client used for authority and credential requests,
// bounded by RequestTimeout. A base client keeps its transport; its own
// timeout wins when set.
func (c Config) HTTPClient(base *http.Client) *http.Client {
	client := &http.Client{}
	if base != nil {
		copied := *base
		client = &copied
	}
	if client.Timeout <= 0 {
		client.Timeout = c.RequestTimeout
	}
	return client
}

// Run starts the watch loop with telemetry.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTurnsync, func(ctx context.Context) error {
		return Watch(ctx, cfg, WatchOptions{})
	})
}
