package storage

import (
	"context"
	"errors"
)

// Claves fijas del almacenamiento local de cada cliente.
const (
	KeyUserProfile         = "lunchbox_user_profile"
	KeyAuthSession         = "lunchbox_auth_session"
	KeySpotifyAccessToken  = "spotify_access_token"
	KeySpotifyRefreshToken = "spotify_refresh_token"
)

var ErrNotFound = errors.New("storage key not found")

// Store emula el localStorage del navegador, separado por cliente.
type Store interface {
	Get(ctx context.Context, clientID, key string) (string, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID string, keys ...string) error
}
