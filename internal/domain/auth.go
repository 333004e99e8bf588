package domain

import (
	"errors"
	"strings"
	"time"
)

type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderDiscord Provider = "discord"
	ProviderSpotify Provider = "spotify"
)

// IsIdentity indica si el proveedor solo sirve para login.
func (p Provider) IsIdentity() bool {
	return p == ProviderGoogle || p == ProviderDiscord
}

// identityTokenPrefix es el prefijo de los access tokens de Google.
const identityTokenPrefix = "ya29."

var (
	ErrNotAuthenticated   = errors.New("not authenticated with provider")
	ErrWrongProviderToken = errors.New("wrong provider token")
)

// LooksLikeIdentityToken detecta un token de Google guardado donde se esperaba uno de musica.
func LooksLikeIdentityToken(token string) bool {
	return strings.HasPrefix(strings.TrimSpace(token), identityTokenPrefix)
}

// ProviderToken etiqueta el bearer con el proveedor que lo emitio.
type ProviderToken struct {
	Provider     Provider  `json:"provider"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Valid no verifica el prefijo; eso depende del uso que se le quiera dar al token.
func (t ProviderToken) Valid(now time.Time) bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}

type IdentityUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Provider Provider `json:"provider"`
}

// PendingSignIn guarda lo necesario para cerrar un flujo OAuth iniciado.
type PendingSignIn struct {
	Provider    Provider  `json:"provider"`
	State       string    `json:"state"`
	Verifier    string    `json:"verifier"`
	ViaSupabase bool      `json:"via_supabase"`
	StartedAt   time.Time `json:"started_at"`
}

// AuthSession es el objeto de sesion de un cliente.
type AuthSession struct {
	Tokens         []ProviderToken `json:"tokens,omitempty"`
	User           *IdentityUser   `json:"user,omitempty"`
	SupabaseAccess string          `json:"supabase_access,omitempty"`
	Pending        *PendingSignIn  `json:"pending,omitempty"`
}

// Token devuelve el ultimo token guardado para el proveedor.
func (s AuthSession) Token(p Provider) (ProviderToken, bool) {
	for i := len(s.Tokens) - 1; i >= 0; i-- {
		if s.Tokens[i].Provider == p {
			return s.Tokens[i], true
		}
	}
	return ProviderToken{}, false
}

// PutToken reemplaza el token del mismo proveedor.
func (s *AuthSession) PutToken(tok ProviderToken) {
	kept := s.Tokens[:0]
	for _, t := range s.Tokens {
		if t.Provider != tok.Provider {
			kept = append(kept, t)
		}
	}
	s.Tokens = append(kept, tok)
}
