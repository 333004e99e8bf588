package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/auth"
)

const (
	clientCookieName = "lunchbox_client"
	clientIDKey      = "client_id"
)

// ClientMiddleware identifica al navegador con un JWT en cookie y emite uno nuevo si falta o es invalido.
func ClientMiddleware(tokens *auth.ClientTokenService, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "client tokens not configured"})
			c.Abort()
			return
		}

		if raw, err := c.Cookie(clientCookieName); err == nil {
			if clientID, err := tokens.Parse(raw); err == nil {
				c.Set(clientIDKey, clientID)
				c.Next()
				return
			}
		}

		clientID, signed, err := tokens.Issue()
		if err != nil {
			logger.Error("issue client token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not identify client"})
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(clientCookieName, signed, int(tokens.TTL().Seconds()), "/", "", secure, true)
		c.Set(clientIDKey, clientID)
		c.Next()
	}
}

// GetClientID obtiene el id de cliente que dejo ClientMiddleware.
func GetClientID(c *gin.Context) (string, bool) {
	val, ok := c.Get(clientIDKey)
	if !ok {
		return "", false
	}
	clientID, ok := val.(string)
	return clientID, ok && clientID != ""
}

func mustClientID(c *gin.Context) (string, bool) {
	clientID, ok := GetClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing client"})
		return "", false
	}
	return clientID, true
}
