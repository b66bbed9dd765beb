package turnsync

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/turnsync/internal/services/turnsync/credential"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("turnsync", flag.ContinueOnError)
	t.Setenv("TURNSYNC_AUTHORITY_URL", "https://games.example/api")
	t.Setenv("TURNSYNC_GAMES", "codebreak:5, wordgrid:12")
	t.Setenv("TURNSYNC_POLL_INTERVAL", "7s")

	cfg, err := ParseConfig(fs, []string{"-locale", "pt-BR", "-user-id", "4"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.AuthorityURL != "https://games.example/api" {
		t.Fatalf("authority url = %q", cfg.AuthorityURL)
	}
	if len(cfg.Games) != 2 || cfg.Games[1] != "wordgrid:12" {
		t.Fatalf("games = %q", cfg.Games)
	}
	if cfg.PollInterval != 7*time.Second {
		t.Fatalf("poll interval = %v, want 7s", cfg.PollInterval)
	}
	if cfg.PreviewDebounce != 300*time.Millisecond {
		t.Fatalf("preview debounce = %v, want 300ms", cfg.PreviewDebounce)
	}
	if cfg.Locale != "pt-BR" || cfg.UserID != 4 {
		t.Fatalf("locale = %q user = %d", cfg.Locale, cfg.UserID)
	}
}

func TestParseConfig_FlagGamesOverrideEnv(t *testing.T) {
	fs := flag.NewFlagSet("turnsync", flag.ContinueOnError)
	t.Setenv("TURNSYNC_GAMES", "codebreak:5")

	cfg, err := ParseConfig(fs, []string{"-games", "pairmatch:9,,fleetgrid:3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if strings.Join(cfg.Games, ",") != "pairmatch:9,fleetgrid:3" {
		t.Fatalf("games = %q", cfg.Games)
	}
}

func TestParseGames(t *testing.T) {
	refs, err := ParseGames([]string{"CodeBreak:5", "wordgrid: 12"})
	if err != nil {
		t.Fatalf("parse games: %v", err)
	}
	if refs[0] != (GameRef{Variant: domain.VariantCodeBreak, ID: "5"}) || refs[1].ID != "12" {
		t.Fatalf("refs = %+v", refs)
	}
	for _, bad := range [][]string{nil, {"codebreak"}, {"chess:1"}, {"codebreak:"}, {"codebreak:1", "codebreak:1"}} {
		if _, err := ParseGames(bad); err == nil {
			t.Fatalf("ParseGames(%q) succeeded", bad)
		}
	}
}

func mintToken(t *testing.T, userID int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestLocalUserID(t *testing.T) {
	if id, err := (Config{UserID: 3}).LocalUserID(); err != nil || id != 3 {
		t.Fatalf("id = %d err = %v", id, err)
	}
	if id, err := (Config{AccessToken: mintToken(t, 17)}).LocalUserID(); err != nil || id != 17 {
		t.Fatalf("id = %d err = %v, want 17 from token", id, err)
	}
	if _, err := (Config{}).LocalUserID(); err == nil {
		t.Fatal("expected error without user id or token")
	}
	if _, err := (Config{AccessToken: "garbage"}).LocalUserID(); err == nil {
		t.Fatal("expected error for unparsable token")
	}
}

func TestProvider(t *testing.T) {
	p, err := (Config{AccessToken: "a"}).Provider(nil)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if _, ok := p.(*credential.StaticProvider); !ok {
		t.Fatalf("provider = %T, want static", p)
	}
	p, err = (Config{AuthorityURL: "http://x", RefreshToken: "r"}).Provider(nil)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if _, ok := p.(*credential.RefreshingProvider); !ok {
		t.Fatalf("provider = %T, want refreshing", p)
	}
	if _, err := (Config{}).Provider(nil); err == nil {
		t.Fatal("expected error without tokens")
	}
}

// codeServer serves a code-breaking game that completes after a few polls.
type codeServer struct {
	mu       sync.Mutex
	gets     int
	finishAt int
	status   int
}

func (s *codeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/games") {
		if r.URL.Path == "/mastermind/games" {
			fmt.Fprint(w, `{"your_turn":[],"their_turn":[{"id":5,"status":"active"}],"completed":[{"id":4,"status":"completed"}]}`)
			return
		}
		fmt.Fprint(w, `{"your_turn":[],"their_turn":[],"completed":[]}`)
		return
	}
	if r.URL.Path != "/mastermind/games/5" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	s.gets++
	gets := s.gets
	s.mu.Unlock()
	if s.status != 0 {
		w.WriteHeader(s.status)
		fmt.Fprint(w, `{"error":"game not found"}`)
		return
	}
	status, winner := "active", "null"
	if s.finishAt > 0 && gets >= s.finishAt {
		status, winner = "completed", "1"
	}
	fmt.Fprintf(w, `{"game":{"id":5,"player1_id":1,"player2_id":2,"current_turn":2,"status":%q,"winner_id":%s},
		"my_guesses":[],"their_guesses":[],"secret_set":true,"phase":%q}`, status, winner, status)
}

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logRecorder) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func watchConfig(url string) Config {
	return Config{
		AuthorityURL:    url,
		AccessToken:     "token",
		UserID:          1,
		Games:           []string{"codebreak:5"},
		PollInterval:    10 * time.Millisecond,
		PreviewDebounce: time.Millisecond,
		RequestTimeout:  time.Second,
		Locale:          "en-US",
	}
}

func TestWatchExitsWhenGamesComplete(t *testing.T) {
	srv := &codeServer{finishAt: 3}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	logs := &logRecorder{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Watch(ctx, watchConfig(ts.URL), WatchOptions{HTTPClient: ts.Client(), Logf: logs.logf}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("watch returned only after the deadline")
	}
	if !logs.contains("codebreak:5: waiting-opponent") || !logs.contains("codebreak:5: you won") {
		t.Fatalf("logs = %q", logs.lines)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	ts := httptest.NewServer(&codeServer{})
	defer ts.Close()
	logs := &logRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, watchConfig(ts.URL), WatchOptions{HTTPClient: ts.Client(), Logf: logs.logf})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchFailsForMissingGame(t *testing.T) {
	ts := httptest.NewServer(&codeServer{status: http.StatusNotFound})
	defer ts.Close()
	logs := &logRecorder{}

	err := Watch(context.Background(), watchConfig(ts.URL), WatchOptions{HTTPClient: ts.Client(), Logf: logs.logf})
	if err == nil {
		t.Fatal("expected error for missing game")
	}
	if !logs.contains("This game no longer exists.") {
		t.Fatalf("logs = %q", logs.lines)
	}
}

func TestHTTPClientAppliesRequestTimeout(t *testing.T) {
	cfg := Config{RequestTimeout: 3 * time.Second}
	if got := cfg.HTTPClient(nil); got.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v, want 3s", got.Timeout)
	}
	base := &http.Client{Transport: http.DefaultTransport}
	got := cfg.HTTPClient(base)
	if got == base || got.Transport != http.DefaultTransport || got.Timeout != 3*time.Second {
		t.Fatalf("client = %+v", got)
	}
	if base.Timeout != 0 {
		t.Fatal("base client must not be modified")
	}
	if got := cfg.HTTPClient(&http.Client{Timeout: time.Second}); got.Timeout != time.Second {
		t.Fatalf("timeout = %v, want the base client's", got.Timeout)
	}
}

func TestWatchDiscoversOpenGames(t *testing.T) {
	ts := httptest.NewServer(&codeServer{finishAt: 2})
	defer ts.Close()
	logs := &logRecorder{}
	cfg := watchConfig(ts.URL)
	cfg.Games = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Watch(ctx, cfg, WatchOptions{HTTPClient: ts.Client(), Logf: logs.logf}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !logs.contains("codebreak:5: you won") {
		t.Fatalf("logs = %q", logs.lines)
	}
	if logs.contains("codebreak:4") {
		t.Fatal("completed games are not watched")
	}
}

func TestWatchWithoutOpenGames(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"your_turn":[],"their_turn":[],"completed":[]}`)
	}))
	defer ts.Close()
	cfg := watchConfig(ts.URL)
	cfg.Games = nil

	err := Watch(context.Background(), cfg, WatchOptions{HTTPClient: ts.Client(), Logf: t.Logf})
	if err == nil || !strings.Contains(err.Error(), "no open games") {
		t.Fatalf("err = %v", err)
	}
}

func TestWatchReportsWordGameOnLocalTurn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrabble/games/12":
			fmt.Fprint(w, `{"game":{"id":12,"player1_id":1,"player2_id":2,"current_turn":1,"status":"active"},
				"rack":[{"letter":"C","value":3}],"tiles_remaining":61}`)
		case "/scrabble/games/12/bag":
			fmt.Fprint(w, `{"tiles":{"A":9},"total":61}`)
		case "/scrabble/games/12/history":
			fmt.Fprint(w, `{"history":[{"move_number":1,"player_name":"ada","move_type":"play","words_formed":["CAT"],"score":10},
				{"move_number":2,"player_name":"bob","move_type":"play","words_formed":["TO","AT"],"score":4}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	logs := &logRecorder{}
	cfg := watchConfig(ts.URL)
	cfg.Games = []string{"wordgrid:12"}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, cfg, WatchOptions{HTTPClient: ts.Client(), Logf: logs.logf})
	}()
	deadline := time.Now().Add(5 * time.Second)
	for !logs.contains("last move") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !logs.contains("wordgrid:12: 61 tiles left in the bag") {
		t.Fatalf("logs = %q", logs.lines)
	}
	if !logs.contains("wordgrid:12: last move #2 play by bob for 4 (TO, AT)") {
		t.Fatalf("logs = %q", logs.lines)
	}
}
