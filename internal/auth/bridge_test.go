package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"lunchbox/internal/config"
	"lunchbox/internal/domain"
	"lunchbox/internal/storage"
)

type fakeLinker struct {
	mu      sync.Mutex
	links   map[domain.ConnectionKind]string
	cleared bool
}

func (f *fakeLinker) AddConnection(_ context.Context, _ string, kind domain.ConnectionKind, value string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.links == nil {
		f.links = make(map[domain.ConnectionKind]string)
	}
	f.links[kind] = value
	return &domain.UserProfile{}, nil
}

func (f *fakeLinker) Clear(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	return nil
}

func newSpotifyTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("code") != "abc" || r.FormValue("code_verifier") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"sp-access","refresh_token":"sp-refresh","token_type":"Bearer","expires_in":3600}`))
	}))
}

func newSpotifyBridge(t *testing.T, srv *httptest.Server) (*Bridge, storage.Store) {
	t.Helper()
	cfg := &config.Config{
		PublicBaseURL:       "http://app.test",
		SpotifyClientID:     "sp-client",
		SpotifyClientSecret: "sp-secret",
	}
	store := storage.NewMemoryStore(0)
	b := NewBridge(cfg, store, &fakeLinker{}, nil)
	b.oauth[domain.ProviderSpotify].Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/authorize",
		TokenURL: srv.URL + "/token",
	}
	return b, store
}

func TestBridge_SpotifyDirectFlow(t *testing.T) {
	srv := newSpotifyTokenServer(t)
	defer srv.Close()
	b, store := newSpotifyBridge(t, srv)
	ctx := context.Background()

	redirect, err := b.SignIn(ctx, "c1", domain.ProviderSpotify)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	u, err := url.Parse(redirect)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	q := u.Query()
	if q.Get("redirect_uri") != "http://app.test/auth/spotify/callback" {
		t.Fatalf("unexpected redirect_uri %q", q.Get("redirect_uri"))
	}
	if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Fatalf("expected pkce challenge, got %v", q)
	}
	state := q.Get("state")
	if state == "" {
		t.Fatalf("expected state")
	}

	back := b.HandleCallback(ctx, "c1", CallbackParams{Provider: domain.ProviderSpotify, Code: "abc", State: state})
	if back != "http://app.test?auth=success&code=abc&provider=spotify" {
		t.Fatalf("unexpected return url %q", back)
	}

	tok, err := b.MusicToken(ctx, "c1")
	if err != nil {
		t.Fatalf("music token: %v", err)
	}
	if tok.Provider != domain.ProviderSpotify || tok.AccessToken != "sp-access" {
		t.Fatalf("unexpected token %+v", tok)
	}
	legacy, err := store.Get(ctx, "c1", storage.KeySpotifyAccessToken)
	if err != nil || legacy != "sp-access" {
		t.Fatalf("expected legacy access token, got %q,%v", legacy, err)
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderGoogle) {
		t.Fatalf("spotify sign in must not authenticate google")
	}
}

func TestBridge_CallbackStateMismatch(t *testing.T) {
	srv := newSpotifyTokenServer(t)
	defer srv.Close()
	b, _ := newSpotifyBridge(t, srv)
	ctx := context.Background()

	if _, err := b.SignIn(ctx, "c1", domain.ProviderSpotify); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	back := b.HandleCallback(ctx, "c1", CallbackParams{Provider: domain.ProviderSpotify, Code: "abc", State: "forged"})
	if back != "http://app.test?error=spotify_state_mismatch" {
		t.Fatalf("unexpected return url %q", back)
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderSpotify) {
		t.Fatalf("expected no token after mismatch")
	}

	back = b.HandleCallback(ctx, "c2", CallbackParams{Provider: domain.ProviderSpotify, Code: "abc", State: "x"})
	if back != "http://app.test?error=spotify_no_pending_sign_in" {
		t.Fatalf("unexpected return url %q", back)
	}
}

func TestBridge_CallbackErrorParam(t *testing.T) {
	b := NewBridge(&config.Config{PublicBaseURL: "http://app.test"}, storage.NewMemoryStore(0), nil, nil)
	ctx := context.Background()

	if got := b.HandleCallback(ctx, "c1", CallbackParams{Error: "access_denied"}); got != "http://app.test?error=access_denied" {
		t.Fatalf("unexpected return url %q", got)
	}
	if got := b.HandleCallback(ctx, "c1", CallbackParams{Provider: domain.ProviderSpotify, Error: "access_denied"}); got != "http://app.test?error=spotify_access_denied" {
		t.Fatalf("unexpected return url %q", got)
	}
	if got := b.HandleCallback(ctx, "c1", CallbackParams{}); got != "http://app.test" {
		t.Fatalf("expected bare return url, got %q", got)
	}
}

func TestBridge_SignInErrors(t *testing.T) {
	b := NewBridge(&config.Config{PublicBaseURL: "http://app.test"}, storage.NewMemoryStore(0), nil, nil)
	ctx := context.Background()

	if _, err := b.SignIn(ctx, "c1", domain.Provider("myspace")); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if _, err := b.SignIn(ctx, "c1", domain.ProviderDiscord); !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestBridge_IdentityTokenInMusicSlot(t *testing.T) {
	store := storage.NewMemoryStore(0)
	b := NewBridge(&config.Config{PublicBaseURL: "http://app.test"}, store, nil, nil)
	ctx := context.Background()

	sess := domain.AuthSession{}
	sess.PutToken(domain.ProviderToken{Provider: domain.ProviderSpotify, AccessToken: "ya29.google-token"})
	if err := b.saveSession(ctx, "c1", sess); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if _, err := b.MusicToken(ctx, "c1"); !errors.Is(err, domain.ErrWrongProviderToken) {
		t.Fatalf("expected ErrWrongProviderToken, got %v", err)
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderSpotify) {
		t.Fatalf("identity token must not count as spotify auth")
	}

	if err := store.Set(ctx, "c2", storage.KeySpotifyAccessToken, "ya29.legacy"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.MusicToken(ctx, "c2"); !errors.Is(err, domain.ErrWrongProviderToken) {
		t.Fatalf("expected ErrWrongProviderToken on legacy slot, got %v", err)
	}
}

func TestBridge_LegacyMusicToken(t *testing.T) {
	store := storage.NewMemoryStore(0)
	b := NewBridge(&config.Config{PublicBaseURL: "http://app.test"}, store, nil, nil)
	ctx := context.Background()

	if _, err := b.MusicToken(ctx, "c1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := store.Set(ctx, "c1", storage.KeySpotifyAccessToken, "BQ-legacy"); err != nil {
		t.Fatalf("set: %v", err)
	}
	tok, err := b.MusicToken(ctx, "c1")
	if err != nil {
		t.Fatalf("music token: %v", err)
	}
	if tok.AccessToken != "BQ-legacy" || tok.Provider != "" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestBridge_ExpiredToken(t *testing.T) {
	b := NewBridge(&config.Config{PublicBaseURL: "http://app.test"}, storage.NewMemoryStore(0), nil, nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	sess := domain.AuthSession{}
	sess.PutToken(domain.ProviderToken{Provider: domain.ProviderDiscord, AccessToken: "d", ExpiresAt: now.Add(-time.Second)})
	if err := b.saveSession(ctx, "c1", sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderDiscord) {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestBridge_SupabaseFlowAndSignOut(t *testing.T) {
	var loggedOut bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			if r.URL.Query().Get("grant_type") != "pkce" || r.Header.Get("apikey") != "anon" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["auth_code"] != "sb-code" || body["code_verifier"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"sb-access","provider_token":"ya29.google","user":{"id":"6f1b8e2a-0c4d-4a57-9a3e-2d9c1b7e5f10","email":"kid@example.com","user_metadata":{"full_name":"Kid"}}}`))
		case "/auth/v1/logout":
			if r.Header.Get("Authorization") == "Bearer sb-access" {
				loggedOut = true
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		PublicBaseURL:   "http://app.test",
		SupabaseURL:     srv.URL,
		SupabaseAnonKey: "anon",
	}
	linker := &fakeLinker{}
	b := NewBridge(cfg, storage.NewMemoryStore(0), linker, nil)
	ctx := context.Background()

	redirect, err := b.SignIn(ctx, "c1", domain.ProviderGoogle)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !strings.HasPrefix(redirect, srv.URL+"/auth/v1/authorize?") {
		t.Fatalf("expected supabase authorize url, got %s", redirect)
	}
	u, _ := url.Parse(redirect)
	if u.Query().Get("provider") != "google" || u.Query().Get("redirect_to") != "http://app.test/auth/callback" {
		t.Fatalf("unexpected authorize params %v", u.Query())
	}

	back := b.HandleCallback(ctx, "c1", CallbackParams{Code: "sb-code"})
	if back != "http://app.test?auth=success&code=sb-code&provider=google" {
		t.Fatalf("unexpected return url %q", back)
	}
	if !b.IsAuthenticated(ctx, "c1", domain.ProviderGoogle) {
		t.Fatalf("expected google session")
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderSpotify) {
		t.Fatalf("google session must not count as spotify")
	}
	if linker.links[domain.ConnectionEmail] != "kid@example.com" || linker.links[domain.ConnectionExternal] != "6f1b8e2a-0c4d-4a57-9a3e-2d9c1b7e5f10" {
		t.Fatalf("expected profile links, got %+v", linker.links)
	}

	st := b.Status(ctx, "c1")
	if !st.Providers[domain.ProviderGoogle] || st.User == nil || st.User.Name != "Kid" {
		t.Fatalf("unexpected status %+v", st)
	}

	if err := b.SignOut(ctx, "c1"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if !loggedOut {
		t.Fatalf("expected supabase logout")
	}
	if !linker.cleared {
		t.Fatalf("expected profile cleared")
	}
	if b.IsAuthenticated(ctx, "c1", domain.ProviderGoogle) {
		t.Fatalf("expected session gone after sign out")
	}
}

func TestBridge_SignInDirectSkipsSupabase(t *testing.T) {
	cfg := &config.Config{
		PublicBaseURL:   "http://app.test",
		SupabaseURL:     "http://supabase.test",
		DiscordClientID: "d-client",
	}
	b := NewBridge(cfg, storage.NewMemoryStore(0), nil, nil)

	redirect, err := b.SignInDirect(context.Background(), "c1", domain.ProviderDiscord)
	if err != nil {
		t.Fatalf("sign in direct: %v", err)
	}
	if !strings.HasPrefix(redirect, "https://discord.com/api/oauth2/authorize?") {
		t.Fatalf("expected discord authorize url, got %s", redirect)
	}
}

func TestIdentityFromIDToken(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "g-1",
		"email": "kid@example.com",
		"name":  "Kid",
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tok := (&oauth2.Token{AccessToken: "ya29.x"}).WithExtra(map[string]any{"id_token": raw})

	user := identityFromIDToken(tok, domain.ProviderGoogle)
	if user == nil || user.ID != "g-1" || user.Email != "kid@example.com" || user.Provider != domain.ProviderGoogle {
		t.Fatalf("unexpected user %+v", user)
	}
	if identityFromIDToken(&oauth2.Token{AccessToken: "x"}, domain.ProviderGoogle) != nil {
		t.Fatalf("expected nil without id_token")
	}
}
