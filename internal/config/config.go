package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Bookings  BookingsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds the HTTP listener settings. AllowedOrigins is the
// comma-separated CORS allow list used outside development.
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// StoreConfig selects the key-value backend: "memory", "file" or "redis".
type StoreConfig struct {
	Backend  string
	FilePath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingsConfig points at the read-only reservations asset.
type BookingsConfig struct {
	AssetURL string
}

type RateLimitConfig struct {
	RequestsPerWindow int
	WindowSeconds     int
}

func splitOrigins(raw string) []string {
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func Load() *Config {
	// .env first so viper's AutomaticEnv picks the values up
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:8100")
	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("STORE_FILE_PATH", "serviprox-store.json")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BOOKINGS_ASSET_URL", "http://localhost:8080/assets/data/reservas.json")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitOrigins(viper.GetString("ALLOWED_ORIGINS")),
		},
		Store: StoreConfig{
			Backend:  viper.GetString("STORE_BACKEND"),
			FilePath: viper.GetString("STORE_FILE_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Bookings: BookingsConfig{
			AssetURL: viper.GetString("BOOKINGS_ASSET_URL"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
}
