package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr          string
	RequestTimeout    time.Duration
	EnrichTimeout     time.Duration
	LogLevel          string
	LogFormat         string
	UserAgent         string
	KinopoiskAPIKey   string
	KinopoiskBaseURL  string
	KinopoiskMaxRPS   int
	WebSearchAPIKey   string
	WebSearchEndpoint string
	MongoURI          string
	MongoDB           string
	RedisURL          string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		EnrichTimeout:     time.Duration(getEnvInt("ENRICH_TIMEOUT_SECONDS", 5)) * time.Second,
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent:         getEnv("USER_AGENT", "cinemabot/1.0"),
		KinopoiskAPIKey:   strings.TrimSpace(os.Getenv("KINOPOISK_API_KEY")),
		KinopoiskBaseURL:  getEnv("KINOPOISK_BASE_URL", "https://api.kinopoisk.dev"),
		KinopoiskMaxRPS:   getEnvInt("KINOPOISK_MAX_RPS", 5),
		WebSearchAPIKey:   strings.TrimSpace(os.Getenv("WEBSEARCH_API_KEY")),
		WebSearchEndpoint: getEnv("WEBSEARCH_ENDPOINT", "https://api.search.brave.com/res/v1/web/search"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "cinemabot"),
		RedisURL:          getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
