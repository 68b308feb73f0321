package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Backend API
	APIBaseURL string
	Backend    string

	// Session storage
	SessionDBPath string

	// Cookies
	SecureCookie bool

	// Server timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
		Backend:    getEnv("BACKEND", "rest"),

		SessionDBPath: getEnv("SESSION_DB_PATH", "./data/gastos.db"),

		SecureCookie: getEnvBool("SECURE_COOKIE", false),

		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "rest", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid backend '%s': must be one of [rest memory]", c.Backend))
	}

	if c.Backend == "rest" {
		if parsed, err := url.Parse(c.APIBaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	}

	if c.SessionDBPath == "" {
		errs = append(errs, "session database path cannot be empty")
	} else if dir := filepath.Dir(c.SessionDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create session database directory '%s': %v", dir, err))
			}
		}
	}

	for _, t := range []struct {
		name  string
		value time.Duration
	}{
		{"read timeout", c.ReadTimeout},
		{"write timeout", c.WriteTimeout},
		{"idle timeout", c.IdleTimeout},
	} {
		if t.value < time.Second {
			errs = append(errs, fmt.Sprintf("invalid %s %v: must be at least 1 second", t.name, t.value))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
