package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"lunchbox/internal/auth"
	"lunchbox/internal/config"
	apihttp "lunchbox/internal/http"
	"lunchbox/internal/llm"
	"lunchbox/internal/music"
	"lunchbox/internal/service"
	"lunchbox/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Store = storage.NewMemoryStore(cfg.StorageTTL())
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using memory storage", zap.Error(err))
		} else {
			store = storage.NewRedisStore(redisClient, cfg.StorageTTL())
			defer redisClient.Close()
		}
		cancel()
	}

	if cfg.GroqAPIKey == "" {
		logger.Warn("groq api key not configured")
	}
	llmClient := llm.NewHTTPClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, logger)
	musicClient := music.NewClient(cfg.SpotifyAPIBaseURL, logger)

	profileSvc := service.NewProfileService(store, logger)
	bridge := auth.NewBridge(cfg, store, profileSvc, logger)
	chatSvc := service.NewChatService(profileSvc, llmClient, musicClient, bridge, logger)
	clientTokens := auth.NewClientTokenService(cfg.SessionSecret, cfg.StorageTTL())

	secureCookies := strings.HasPrefix(cfg.PublicBaseURL, "https://")
	router := apihttp.NewRouter(
		logger,
		apihttp.ClientMiddleware(clientTokens, secureCookies, logger),
		apihttp.NewChatHandler(logger, chatSvc),
		apihttp.NewProfileHandler(logger, profileSvc),
		apihttp.NewAuthHandler(logger, bridge, chatSvc, cfg),
		apihttp.NewMusicHandler(logger, musicClient, bridge),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("public_base_url", cfg.PublicBaseURL),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
