package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment       string
	Port              string
	AllowedOrigins    []string
	ConfirmationGrace time.Duration

	NotifierProvider string
	EmailFromAddress string
	EmailFromName    string
	SESRegion        string
	SESAccessKeyID   string
	SESSecretKey     string
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file if not in production
	// We don't return error here because in production .env might not exist
	// and we rely on system environment variables
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:      env,
		Port:             os.Getenv("PORT"),
		NotifierProvider: os.Getenv("NOTIFIER_PROVIDER"),
		EmailFromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailFromName:    os.Getenv("EMAIL_FROM_NAME"),
		SESRegion:        os.Getenv("SES_REGION"),
		SESAccessKeyID:   os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretKey:     os.Getenv("SES_SECRET_ACCESS_KEY"),
	}

	// Set defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.NotifierProvider == "" {
		cfg.NotifierProvider = "log"
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.ConfirmationGrace = time.Hour
	if s := os.Getenv("CONFIRMATION_GRACE"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			log.Printf("Warning: invalid CONFIRMATION_GRACE %q, using default: %v", s, err)
		} else if d > 0 {
			cfg.ConfirmationGrace = d
		}
	}

	return cfg, nil
}
