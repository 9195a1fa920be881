package config // package config loads portal configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.  Required values are enforced
// by must(); optional ones carry defaults that match a local development
// setup against a backend on localhost.
type Config struct {
	Env               string   // application environment (dev/test/prod)
	Port              string   // HTTP port to listen on
	APIBaseURL        string   // base URL of the backend REST API
	TokenStore        string   // token store driver: file, redis or memory
	TokenFile         string   // path for the file driver
	CookieName        string   // access-token cookie read by the route gate
	SessionID         string   // key suffix for the redis token store
	DefaultLocale     string   // locale used when a path carries none
	Locales           []string // supported locale prefixes
	RequestTimeoutSec int      // per-request timeout for backend calls
}

// Load reads configuration, first letting a local .env file populate the
// environment.  Missing required variables are fatal.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		APIBaseURL:        getenv("API_BASE_URL", "http://localhost:8000"),
		TokenStore:        getenv("TOKEN_STORE", "file"),
		TokenFile:         getenv("TOKEN_FILE", ".care-portal/tokens.json"),
		CookieName:        getenv("ACCESS_COOKIE_NAME", "access_token"),
		SessionID:         getenv("PORTAL_SESSION_ID", "default"),
		DefaultLocale:     getenv("DEFAULT_LOCALE", "en"),
		Locales:           splitList(getenv("LOCALES", "en,pl,nl,fr,de,es")),
		RequestTimeoutSec: getint("REQUEST_TIMEOUT_SEC", 10),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
