package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrClientTokenInvalid = errors.New("client token invalid")

const clientTokenType = "client"

// ClientTokenService emite y valida el JWT que identifica a un navegador.
type ClientTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type clientClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func NewClientTokenService(secret string, ttl time.Duration) *ClientTokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ClientTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "lunchbox",
	}
}

func (s *ClientTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue crea un cliente nuevo y devuelve su id junto con el token firmado.
func (s *ClientTokenService) Issue() (string, string, error) {
	if len(s.secret) == 0 {
		return "", "", ErrClientTokenInvalid
	}
	clientID := uuid.NewString()
	now := time.Now().UTC()
	claims := clientClaims{
		TokenType: clientTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return clientID, signed, nil
}

// Parse valida el token y devuelve el id del cliente.
func (s *ClientTokenService) Parse(token string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return "", ErrClientTokenInvalid
	}
	var claims clientClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrClientTokenInvalid
	}
	if claims.TokenType != clientTokenType || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrClientTokenInvalid
	}
	return claims.Subject, nil
}
