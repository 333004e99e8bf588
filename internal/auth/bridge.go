package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"lunchbox/internal/config"
	"lunchbox/internal/domain"
	"lunchbox/internal/storage"
)

var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrStateMismatch         = errors.New("oauth state mismatch")
	ErrNoPendingSignIn       = errors.New("no pending sign in")
)

// ProfileLinker es lo que el bridge necesita del perfil local.
type ProfileLinker interface {
	AddConnection(ctx context.Context, clientID string, kind domain.ConnectionKind, value string) (*domain.UserProfile, error)
	Clear(ctx context.Context, clientID string) error
}

// Bridge inicia los flujos OAuth, guarda los tokens etiquetados por proveedor
// y responde si un cliente tiene una sesion utilizable.
type Bridge struct {
	logger           *zap.Logger
	store            storage.Store
	profiles         ProfileLinker
	oauth            map[domain.Provider]*oauth2.Config
	supabase         *SupabaseClient
	baseURL          string
	identityRedirect string
	httpClient       *http.Client
	now              func() time.Time
}

func NewBridge(cfg *config.Config, store storage.Store, profiles ProfileLinker, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		logger:           logger,
		store:            store,
		profiles:         profiles,
		oauth:            oauthConfigs(cfg),
		supabase:         NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey),
		baseURL:          cfg.PublicBaseURL,
		identityRedirect: cfg.IdentityRedirectURL(),
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Status resume la sesion de un cliente.
type Status struct {
	Providers map[domain.Provider]bool `json:"providers"`
	User      *domain.IdentityUser     `json:"user,omitempty"`
}

// CallbackParams son los query params de la ruta de callback.
// Provider viene de la ruta y queda vacio en /auth/callback.
type CallbackParams struct {
	Provider domain.Provider
	Code     string
	State    string
	Error    string
}

// SignIn devuelve la URL a la que hay que redirigir al usuario.
// Google y Discord pasan por Supabase cuando esta configurado.
func (b *Bridge) SignIn(ctx context.Context, clientID string, provider domain.Provider) (string, error) {
	return b.signIn(ctx, clientID, provider, true)
}

// SignInDirect salta Supabase y va directo al endpoint OAuth del proveedor.
func (b *Bridge) SignInDirect(ctx context.Context, clientID string, provider domain.Provider) (string, error) {
	return b.signIn(ctx, clientID, provider, false)
}

func (b *Bridge) signIn(ctx context.Context, clientID string, provider domain.Provider, allowSupabase bool) (string, error) {
	if _, err := ParseProvider(string(provider)); err != nil {
		return "", err
	}

	verifier := oauth2.GenerateVerifier()
	pending := domain.PendingSignIn{
		Provider:  provider,
		State:     uuid.NewString(),
		Verifier:  verifier,
		StartedAt: b.now(),
	}

	var redirect string
	if allowSupabase && provider.IsIdentity() && b.supabase != nil {
		pending.ViaSupabase = true
		redirect = b.supabase.AuthorizeURL(provider, b.identityRedirect, oauth2.S256ChallengeFromVerifier(verifier))
	} else {
		conf, ok := b.oauth[provider]
		if !ok {
			return "", ErrProviderNotConfigured
		}
		redirect = conf.AuthCodeURL(pending.State, oauth2.S256ChallengeOption(verifier))
	}

	sess := b.loadSession(ctx, clientID)
	sess.Pending = &pending
	if err := b.saveSession(ctx, clientID, sess); err != nil {
		return "", err
	}

	b.logger.Info("oauth sign in started",
		zap.String("provider", string(provider)),
		zap.Bool("via_supabase", pending.ViaSupabase),
	)
	return redirect, nil
}

// HandleCallback cierra el flujo OAuth y devuelve la URL de retorno sobre PUBLIC_BASE_URL.
func (b *Bridge) HandleCallback(ctx context.Context, clientID string, p CallbackParams) string {
	errPrefix := ""
	if p.Provider != "" {
		errPrefix = string(p.Provider) + "_"
	}

	if p.Error != "" {
		b.logger.Info("oauth callback error", zap.String("provider", string(p.Provider)), zap.String("error", p.Error))
		b.clearPending(ctx, clientID)
		return b.returnURL(url.Values{"error": {errPrefix + p.Error}})
	}
	if p.Code == "" {
		return b.returnURL(nil)
	}

	provider, err := b.completeSignIn(ctx, clientID, p)
	if err != nil {
		b.logger.Warn("oauth callback failed", zap.Error(err))
		return b.returnURL(url.Values{"error": {errPrefix + callbackErrorCode(err)}})
	}

	b.logger.Info("oauth callback completed", zap.String("provider", string(provider)))
	return b.returnURL(url.Values{
		"auth":     {"success"},
		"provider": {string(provider)},
		"code":     {p.Code},
	})
}

func (b *Bridge) completeSignIn(ctx context.Context, clientID string, p CallbackParams) (domain.Provider, error) {
	sess := b.loadSession(ctx, clientID)
	pending := sess.Pending
	if pending == nil {
		return "", ErrNoPendingSignIn
	}
	if p.Provider != "" && p.Provider != pending.Provider {
		return "", ErrStateMismatch
	}
	// Supabase vuelve a redirect_to sin nuestro state.
	if p.State != pending.State && !(p.State == "" && pending.ViaSupabase) {
		return "", ErrStateMismatch
	}
	sess.Pending = nil

	if pending.ViaSupabase {
		if b.supabase == nil {
			return "", ErrProviderNotConfigured
		}
		ss, err := b.supabase.ExchangePKCE(ctx, p.Code, pending.Verifier)
		if err != nil {
			return "", fmt.Errorf("supabase exchange: %w", err)
		}
		sess.SupabaseAccess = ss.AccessToken
		if ss.ProviderToken != "" {
			sess.PutToken(domain.ProviderToken{
				Provider:     pending.Provider,
				AccessToken:  ss.ProviderToken,
				RefreshToken: ss.ProviderRefreshToken,
			})
		}
		sess.User = &domain.IdentityUser{
			ID:       ss.UserID,
			Email:    ss.Email,
			Name:     ss.FullName,
			Provider: pending.Provider,
		}
	} else {
		conf, ok := b.oauth[pending.Provider]
		if !ok {
			return "", ErrProviderNotConfigured
		}
		octx := context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
		token, err := conf.Exchange(octx, p.Code, oauth2.VerifierOption(pending.Verifier))
		if err != nil {
			return "", fmt.Errorf("oauth exchange: %w", err)
		}
		sess.PutToken(domain.ProviderToken{
			Provider:     pending.Provider,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    token.Expiry,
		})
		if pending.Provider.IsIdentity() {
			if user := identityFromIDToken(token, pending.Provider); user != nil {
				sess.User = user
			}
		}
		if pending.Provider == domain.ProviderSpotify {
			b.saveLegacyMusicToken(ctx, clientID, token.AccessToken, token.RefreshToken)
		}
	}

	if err := b.saveSession(ctx, clientID, sess); err != nil {
		return "", err
	}
	if sess.User != nil {
		b.linkProfile(ctx, clientID, *sess.User)
	}
	return pending.Provider, nil
}

// IsAuthenticated no acepta un token de identidad en el slot de musica,
// aunque venga etiquetado como spotify.
func (b *Bridge) IsAuthenticated(ctx context.Context, clientID string, provider domain.Provider) bool {
	_, err := b.token(ctx, clientID, provider)
	return err == nil
}

// MusicToken devuelve el token de Spotify listo para usar.
func (b *Bridge) MusicToken(ctx context.Context, clientID string) (domain.ProviderToken, error) {
	return b.token(ctx, clientID, domain.ProviderSpotify)
}

func (b *Bridge) token(ctx context.Context, clientID string, provider domain.Provider) (domain.ProviderToken, error) {
	sess := b.loadSession(ctx, clientID)
	tok, ok := sess.Token(provider)
	if !ok && provider == domain.ProviderSpotify {
		tok, ok = b.legacyMusicToken(ctx, clientID)
	}
	if !ok || !tok.Valid(b.now()) {
		return domain.ProviderToken{}, domain.ErrNotAuthenticated
	}
	if provider == domain.ProviderSpotify && domain.LooksLikeIdentityToken(tok.AccessToken) {
		return domain.ProviderToken{}, domain.ErrWrongProviderToken
	}
	return tok, nil
}

func (b *Bridge) Status(ctx context.Context, clientID string) Status {
	st := Status{Providers: make(map[domain.Provider]bool, 3)}
	for _, p := range []domain.Provider{domain.ProviderGoogle, domain.ProviderDiscord, domain.ProviderSpotify} {
		st.Providers[p] = b.IsAuthenticated(ctx, clientID, p)
	}
	st.User = b.loadSession(ctx, clientID).User
	return st
}

// SignOut cierra la sesion de Supabase si existe y borra tokens y perfil local.
func (b *Bridge) SignOut(ctx context.Context, clientID string) error {
	sess := b.loadSession(ctx, clientID)
	if sess.SupabaseAccess != "" && b.supabase != nil {
		if err := b.supabase.Logout(ctx, sess.SupabaseAccess); err != nil {
			b.logger.Warn("supabase logout failed", zap.Error(err))
		}
	}
	if err := b.store.Delete(ctx, clientID, storage.KeyAuthSession, storage.KeySpotifyAccessToken, storage.KeySpotifyRefreshToken); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}
	if b.profiles != nil {
		if err := b.profiles.Clear(ctx, clientID); err != nil {
			return fmt.Errorf("clear profile: %w", err)
		}
	}
	return nil
}

func (b *Bridge) loadSession(ctx context.Context, clientID string) domain.AuthSession {
	raw, err := b.store.Get(ctx, clientID, storage.KeyAuthSession)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.logger.Warn("load auth session failed", zap.Error(err))
		}
		return domain.AuthSession{}
	}
	var sess domain.AuthSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		b.logger.Warn("parse auth session failed", zap.Error(err))
		return domain.AuthSession{}
	}
	return sess
}

func (b *Bridge) saveSession(ctx context.Context, clientID string, sess domain.AuthSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal auth session: %w", err)
	}
	if err := b.store.Set(ctx, clientID, storage.KeyAuthSession, string(raw)); err != nil {
		return fmt.Errorf("save auth session: %w", err)
	}
	return nil
}

func (b *Bridge) clearPending(ctx context.Context, clientID string) {
	sess := b.loadSession(ctx, clientID)
	if sess.Pending == nil {
		return
	}
	sess.Pending = nil
	if err := b.saveSession(ctx, clientID, sess); err != nil {
		b.logger.Warn("clear pending sign in failed", zap.Error(err))
	}
}

func (b *Bridge) legacyMusicToken(ctx context.Context, clientID string) (domain.ProviderToken, bool) {
	access, err := b.store.Get(ctx, clientID, storage.KeySpotifyAccessToken)
	if err != nil {
		return domain.ProviderToken{}, false
	}
	refresh, _ := b.store.Get(ctx, clientID, storage.KeySpotifyRefreshToken)
	return domain.ProviderToken{AccessToken: access, RefreshToken: refresh}, true
}

func (b *Bridge) saveLegacyMusicToken(ctx context.Context, clientID, access, refresh string) {
	if err := b.store.Set(ctx, clientID, storage.KeySpotifyAccessToken, access); err != nil {
		b.logger.Warn("save spotify access token failed", zap.Error(err))
	}
	if refresh == "" {
		return
	}
	if err := b.store.Set(ctx, clientID, storage.KeySpotifyRefreshToken, refresh); err != nil {
		b.logger.Warn("save spotify refresh token failed", zap.Error(err))
	}
}

func (b *Bridge) linkProfile(ctx context.Context, clientID string, user domain.IdentityUser) {
	if b.profiles == nil {
		return
	}
	if user.Email != "" {
		if _, err := b.profiles.AddConnection(ctx, clientID, domain.ConnectionEmail, user.Email); err != nil {
			b.logger.Warn("link profile email failed", zap.Error(err))
		}
	}
	if user.ID != "" {
		if _, err := b.profiles.AddConnection(ctx, clientID, domain.ConnectionExternal, user.ID); err != nil {
			b.logger.Warn("link profile external id failed", zap.Error(err))
		}
	}
}

func (b *Bridge) returnURL(params url.Values) string {
	base := b.baseURL
	if base == "" {
		base = "/"
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

func callbackErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrStateMismatch):
		return "state_mismatch"
	case errors.Is(err, ErrNoPendingSignIn):
		return "no_pending_sign_in"
	case errors.Is(err, ErrProviderNotConfigured):
		return "provider_not_configured"
	default:
		return "exchange_failed"
	}
}

// identityFromIDToken lee los claims del id_token sin verificar la firma.
func identityFromIDToken(token *oauth2.Token, provider domain.Provider) *domain.IdentityUser {
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return nil
	}
	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		jwt.RegisteredClaims
	}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil
	}
	return &domain.IdentityUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: provider,
	}
}
