package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort            string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv              string `env:"APP_ENV" envDefault:"production"`
	PublicBaseURL       string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	SessionSecret       string `env:"SESSION_SECRET,required,notEmpty"`
	GroqAPIKey          string `env:"GROQ_API_KEY"`
	GroqBaseURL         string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel           string `env:"GROQ_MODEL" envDefault:"llama3-8b-8192"`
	SupabaseURL         string `env:"SUPABASE_URL"`
	SupabaseAnonKey     string `env:"SUPABASE_ANON_KEY"`
	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string `env:"GOOGLE_CLIENT_SECRET"`
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyAPIBaseURL   string `env:"SPOTIFY_API_BASE_URL" envDefault:"https://api.spotify.com/v1"`
	RedisAddr           string `env:"REDIS_ADDR"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	StorageTTLHours     int    `env:"STORAGE_TTL_HOURS" envDefault:"720"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &cfg, nil
}

// IdentityRedirectURL es el callback comun de Google y Discord.
func (c *Config) IdentityRedirectURL() string {
	return c.PublicBaseURL + "/auth/callback"
}

func (c *Config) MusicRedirectURL() string {
	return c.PublicBaseURL + "/auth/spotify/callback"
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func (c *Config) StorageTTL() time.Duration {
	if c.StorageTTLHours <= 0 {
		return 0
	}
	return time.Duration(c.StorageTTLHours) * time.Hour
}
