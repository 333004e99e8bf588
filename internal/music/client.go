package music

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"lunchbox/internal/domain"
)

const (
	suggestionLimit     = 5
	playlistNamePrefix  = "Lunchbox.ai - "
	playlistDescription = "Created by Lunchbox.ai for your tasks!"
)

// Client habla con la Web API de Spotify usando el token del usuario.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.spotify.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// api arma un cliente de spotify por llamada; el token es del usuario, no de la app.
func (c *Client) api(ctx context.Context, tok domain.ProviderToken) *spotify.Client {
	base := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok.AccessToken, TokenType: "Bearer"})
	return spotify.New(oauth2.NewClient(base, src), spotify.WithBaseURL(c.baseURL))
}

// Suggest busca hasta 5 tracks para el texto del usuario.
func (c *Client) Suggest(ctx context.Context, tok domain.ProviderToken, input string) ([]domain.Track, error) {
	return c.Search(ctx, tok, QueryFor(input), suggestionLimit)
}

func (c *Client) Search(ctx context.Context, tok domain.ProviderToken, query string, limit int) ([]domain.Track, error) {
	if err := checkToken(tok); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = suggestionLimit
	}

	res, err := c.api(ctx, tok).Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, c.wrap("search tracks", err)
	}
	if res == nil || res.Tracks == nil {
		return []domain.Track{}, nil
	}

	tracks := make([]domain.Track, 0, len(res.Tracks.Tracks))
	for _, item := range res.Tracks.Tracks {
		tracks = append(tracks, toTrack(item))
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// CreatePlaylist crea una playlist privada y agrega los tracks en un solo batch.
func (c *Client) CreatePlaylist(ctx context.Context, tok domain.ProviderToken, name string, tracks []domain.Track) (string, error) {
	if err := checkToken(tok); err != nil {
		return "", err
	}
	api := c.api(ctx, tok)

	me, err := api.CurrentUser(ctx)
	if err != nil {
		return "", c.wrap("get current user", err)
	}

	playlist, err := api.CreatePlaylistForUser(ctx, me.ID, playlistNamePrefix+name, playlistDescription, false, false)
	if err != nil {
		return "", c.wrap("create playlist", err)
	}

	if len(tracks) > 0 {
		ids := make([]spotify.ID, 0, len(tracks))
		for _, t := range tracks {
			ids = append(ids, spotify.ID(t.ID))
		}
		if _, err := api.AddTracksToPlaylist(ctx, playlist.ID, ids...); err != nil {
			return "", c.wrap("add playlist tracks", err)
		}
	}

	return playlist.ExternalURLs["spotify"], nil
}

// PlayTrack pide reproducir un track en el dispositivo activo del usuario.
// Solo devuelve error si el token no sirve; las fallas del proveedor son false.
func (c *Client) PlayTrack(ctx context.Context, tok domain.ProviderToken, trackID string) (bool, error) {
	if err := checkToken(tok); err != nil {
		return false, err
	}
	opt := &spotify.PlayOptions{URIs: []spotify.URI{trackURI(trackID)}}
	if err := c.api(ctx, tok).PlayOpt(ctx, opt); err != nil {
		if isUnauthorized(err) {
			return false, domain.ErrNotAuthenticated
		}
		c.logger.Warn("play track failed", zap.String("track_id", trackID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func checkToken(tok domain.ProviderToken) error {
	if strings.TrimSpace(tok.AccessToken) == "" {
		return domain.ErrNotAuthenticated
	}
	if tok.Provider != "" && tok.Provider != domain.ProviderSpotify {
		return domain.ErrWrongProviderToken
	}
	if domain.LooksLikeIdentityToken(tok.AccessToken) {
		return domain.ErrWrongProviderToken
	}
	return nil
}

func trackURI(id string) spotify.URI {
	return spotify.URI("spotify:track:" + id)
}

func (c *Client) wrap(op string, err error) error {
	if isUnauthorized(err) {
		return domain.ErrNotAuthenticated
	}
	c.logger.Warn("spotify request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func isUnauthorized(err error) bool {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp != nil {
		return sp.Status == http.StatusUnauthorized
	}
	return false
}

func toTrack(t spotify.FullTrack) domain.Track {
	track := domain.Track{
		ID:          string(t.ID),
		Name:        t.Name,
		Album:       t.Album.Name,
		ProviderURL: t.ExternalURLs["spotify"],
		DurationMs:  int(t.Duration),
	}
	if t.PreviewURL != "" {
		preview := t.PreviewURL
		track.PreviewURL = &preview
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		track.AlbumArtURL = t.Album.Images[0].URL
	}
	return track
}
