package credential

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
)

func mintToken(t *testing.T, userID int64, exp time.Time) string {
	t.Helper()
	claims := accessClaims{
		UserID:   userID,
		Username: "ada",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    "authority",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	claims, err := ParseClaims(mintToken(t, 42, exp))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "ada" || !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := ParseClaims("not-a-token"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(" abc ")
	token, err := p.Token(context.Background())
	if err != nil || token != "abc" {
		t.Fatalf("token = %q %v", token, err)
	}
	if _, err := p.Refresh(context.Background()); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("refresh err = %v", err)
	}
	p.Set("")
	if _, err := p.Token(context.Background()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

type refreshServer struct {
	calls   atomic.Int32
	status  int
	release chan struct{}
	token   string
}

func (s *refreshServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if r.Method != http.MethodPost || r.URL.Path != "/api/refresh" {
		http.NotFound(w, r)
		return
	}
	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken != "refresh-1" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	_ = json.NewEncoder(w).Encode(refreshResponse{AccessToken: s.token})
}

func TestRefreshingProviderProactiveRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := mintToken(t, 7, now.Add(time.Hour))
	srv := &refreshServer{token: fresh}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	stale := mintToken(t, 7, now.Add(10*time.Second))
	p := NewRefreshingProvider(ts.URL+"/api/", stale, "refresh-1",
		WithHTTPClient(ts.Client()), WithNow(func() time.Time { return now }))

	token, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != fresh {
		t.Fatal("expected proactive refresh inside the skew window")
	}
	if _, err := p.Token(context.Background()); err != nil || srv.calls.Load() != 1 {
		t.Fatalf("calls = %d err = %v, want cached token", srv.calls.Load(), err)
	}
}

func TestRefreshingProviderKeepsUnexpiredTokenOnFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := &refreshServer{status: http.StatusBadGateway}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	nearly := mintToken(t, 7, now.Add(10*time.Second))
	p := NewRefreshingProvider(ts.URL+"/api", nearly, "refresh-1",
		WithHTTPClient(ts.Client()), WithNow(func() time.Time { return now }))
	token, err := p.Token(context.Background())
	if err != nil || token != nearly {
		t.Fatalf("token = %v err = %v, want the unexpired token", token == nearly, err)
	}

	expired := mintToken(t, 7, now.Add(-time.Second))
	p = NewRefreshingProvider(ts.URL+"/api", expired, "refresh-1",
		WithHTTPClient(ts.Client()), WithNow(func() time.Time { return now }))
	if _, err := p.Token(context.Background()); !apperrors.HasCode(err, apperrors.CodeNetwork) {
		t.Fatalf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestRefreshingProviderCoalescesConcurrentRefreshes(t *testing.T) {
	srv := &refreshServer{token: "new-token", release: make(chan struct{})}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := NewRefreshingProvider(ts.URL+"/api", "old", "refresh-1", WithHTTPClient(ts.Client()))
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.Refresh(context.Background())
		}(i)
	}
	for srv.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	// Give the remaining callers time to join the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(srv.release)
	wg.Wait()

	if got := srv.calls.Load(); got != 1 {
		t.Fatalf("refresh calls = %d, want 1", got)
	}
	for i, r := range results {
		if r != "new-token" {
			t.Fatalf("result %d = %q", i, r)
		}
	}
}

func TestRefreshingProviderRejectedRefresh(t *testing.T) {
	srv := &refreshServer{token: "x"}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := NewRefreshingProvider(ts.URL+"/api", "", "wrong", WithHTTPClient(ts.Client()))
	if _, err := p.Token(context.Background()); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
	p = NewRefreshingProvider(ts.URL+"/api", "", "")
	if _, err := p.Refresh(context.Background()); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}
