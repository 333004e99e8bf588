package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/domain"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	clientMW gin.HandlerFunc,
	chatH *ChatHandler,
	profileH *ProfileHandler,
	authH *AuthHandler,
	musicH *MusicHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("", clientMW)

	chat := api.Group("/chat")
	chat.POST("/start", chatH.Start)
	chat.POST("/message", chatH.PostMessage)
	chat.GET("/messages", chatH.ListMessages)
	chat.POST("/tasks", chatH.SuggestTasks)

	api.GET("/profile", profileH.GetProfile)
	api.DELETE("/profile", profileH.ClearProfile)

	authG := api.Group("/auth")
	authG.GET("/login/:provider", authH.Login)
	authG.GET("/discord-direct", authH.DiscordDirect)
	authG.GET("/callback", authH.Callback(""))
	authG.GET("/spotify/callback", authH.Callback(domain.ProviderSpotify))
	authG.GET("/status", authH.Status)
	authG.POST("/logout", authH.Logout)
	authG.GET("/config", authH.Config)
	authG.GET("/check", authH.Check)

	musicG := api.Group("/music")
	musicG.POST("/suggestions", musicH.Suggestions)
	musicG.POST("/playlists", musicH.CreatePlaylist)
	musicG.POST("/play", musicH.Play)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
