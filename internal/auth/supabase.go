package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"lunchbox/internal/domain"
)

// SupabaseClient cubre la parte de GoTrue que usa el login por Supabase.
type SupabaseClient struct {
	baseURL string
	api     gotrue.Client
}

func NewSupabaseClient(baseURL, anonKey string) *SupabaseClient {
	if strings.TrimSpace(baseURL) == "" {
		return nil
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &SupabaseClient{
		baseURL: baseURL,
		api:     gotrue.New("", anonKey).WithCustomGoTrueURL(baseURL + "/auth/v1"),
	}
}

// SupabaseSession es lo que nos importa del intercambio PKCE.
type SupabaseSession struct {
	AccessToken          string
	RefreshToken         string
	ProviderToken        string
	ProviderRefreshToken string
	UserID               string
	Email                string
	FullName             string
}

// AuthorizeURL arma el redirect a /auth/v1/authorize con challenge S256.
// gotrue.Authorize genera su propio verifier y no lleva redirect_to.
func (c *SupabaseClient) AuthorizeURL(provider domain.Provider, redirectTo, challenge string) string {
	params := url.Values{}
	params.Set("provider", string(provider))
	params.Set("redirect_to", redirectTo)
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", "s256")
	return c.baseURL + "/auth/v1/authorize?" + params.Encode()
}

func (c *SupabaseClient) ExchangePKCE(ctx context.Context, code, verifier string) (SupabaseSession, error) {
	if err := ctx.Err(); err != nil {
		return SupabaseSession{}, err
	}
	resp, err := c.api.Token(types.TokenRequest{
		GrantType:    "pkce",
		Code:         code,
		CodeVerifier: verifier,
	})
	if err != nil {
		return SupabaseSession{}, fmt.Errorf("supabase token: %w", err)
	}
	if resp == nil || resp.AccessToken == "" {
		return SupabaseSession{}, errors.New("supabase token error: empty access token")
	}

	sess := SupabaseSession{
		AccessToken:          resp.AccessToken,
		RefreshToken:         resp.RefreshToken,
		ProviderToken:        resp.ProviderToken,
		ProviderRefreshToken: resp.ProviderRefreshToken,
		Email:                resp.User.Email,
	}
	if resp.User.ID != uuid.Nil {
		sess.UserID = resp.User.ID.String()
	}
	if name, ok := resp.User.UserMetadata["full_name"].(string); ok {
		sess.FullName = name
	}
	return sess, nil
}

// Logout termina la sesion en Supabase.
func (c *SupabaseClient) Logout(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.api.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("supabase logout: %w", err)
	}
	return nil
}
