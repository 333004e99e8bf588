package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/spotify"

	"lunchbox/internal/config"
	"lunchbox/internal/domain"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"streaming",
}

// ParseProvider normaliza el nombre recibido en la ruta.
func ParseProvider(name string) (domain.Provider, error) {
	switch p := domain.Provider(name); p {
	case domain.ProviderGoogle, domain.ProviderDiscord, domain.ProviderSpotify:
		return p, nil
	default:
		return "", ErrUnknownProvider
	}
}

// oauthConfigs arma un oauth2.Config por proveedor con client id configurado.
// Todas las redirect URIs salen de PUBLIC_BASE_URL.
func oauthConfigs(cfg *config.Config) map[domain.Provider]*oauth2.Config {
	out := make(map[domain.Provider]*oauth2.Config)
	if cfg.GoogleClientID != "" {
		out[domain.ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.IdentityRedirectURL(),
			Scopes:       []string{"openid", "email", "profile"},
		}
	}
	if cfg.DiscordClientID != "" {
		out[domain.ProviderDiscord] = &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			Endpoint:     discordEndpoint,
			RedirectURL:  cfg.IdentityRedirectURL(),
			Scopes:       []string{"identify", "email"},
		}
	}
	if cfg.SpotifyClientID != "" {
		out[domain.ProviderSpotify] = &oauth2.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			Endpoint:     spotify.Endpoint,
			RedirectURL:  cfg.MusicRedirectURL(),
			Scopes:       spotifyScopes,
		}
	}
	return out
}
