package config

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds all configuration for the application, resolved once at
// process start from the environment.
type Config struct {
	ListenAddr    string
	AllowedOrigin string

	// Database configuration. DatabaseURL wins when set; otherwise the URL is
	// assembled from the component fields.
	DatabaseURL string

	// Generative service configuration. Generator selects the backend:
	// "gemini" (default) or "local".
	GeminiAPIKey string
	Generator    string
	LocalLLMURL  string

	// Classifier files. Both optional; the service starts without them.
	ModelPath   string
	ClassesPath string

	UploadDir string
	LogLevel  string
}

// Load reads configuration from environment variables, applying defaults and
// validating that a database target exists.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		Generator:     getEnv("GENERATOR", "gemini"),
		LocalLLMURL:   os.Getenv("LOCAL_LLM_URL"),
		ModelPath:     getEnv("MODEL_PATH", "ml/ingredient_model.pb"),
		ClassesPath:   getEnv("CLASSES_PATH", "ml/classes.json"),
		UploadDir:     getEnv("UPLOAD_DIR", "temp_uploads"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			return nil, fmt.Errorf("either DATABASE_URL or DB_HOST must be set")
		}
		cfg.DatabaseURL = BuildDatabaseURL(
			host,
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_NAME", "recipe_db"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	return cfg, nil
}

// BuildDatabaseURL assembles a Postgres connection URL from component
// credentials. User and password are escaped here, once, so special
// characters never produce a malformed URL downstream.
func BuildDatabaseURL(host, port, user, password, name, sslmode string) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
