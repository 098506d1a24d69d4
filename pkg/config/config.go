package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	APIURL       string
	Port         string
	AdminKey     string
	ViewsDir     string
	PublicDir    string
	StateFile    string
	LogFile      string
	LogLevel     string
	BucketName   string
	CookieSecure bool
	CacheTTL     time.Duration
}

const (
	defaultAPIURL   = "http://localhost:8787"
	defaultPort     = "8080"
	defaultCacheTTL = 5 * time.Minute
)

// ErrAPIURLInvalid is returned when API_URL is not an absolute http(s) URL
var ErrAPIURLInvalid = errors.New("API_URL must be an absolute http or https URL")

// ErrBucketNameNotSet is returned when a snapshot command runs without BUCKET_NAME
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrCacheTTLInvalid is returned when CACHE_TTL does not parse as a duration
var ErrCacheTTLInvalid = errors.New("CACHE_TTL must be a duration such as 5m")

// Load loads configuration from environment variables
func Load() (*Config, error) {
	apiURL := getenv("API_URL", defaultAPIURL)
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrAPIURLInvalid, apiURL)
	}

	cacheTTL := defaultCacheTTL
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		cacheTTL, err = time.ParseDuration(raw)
		if err != nil || cacheTTL <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrCacheTTLInvalid, raw)
		}
	}

	secure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))

	return &Config{
		APIURL:       apiURL,
		Port:         getenv("PORT", defaultPort),
		AdminKey:     os.Getenv("ADMIN_KEY"),
		ViewsDir:     getenv("VIEWS_DIR", "./views"),
		PublicDir:    getenv("PUBLIC_DIR", "./public"),
		StateFile:    getenv("STATE_FILE", defaultStateFile()),
		LogFile:      os.Getenv("LOG_FILE"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		BucketName:   os.Getenv("BUCKET_NAME"),
		CookieSecure: secure,
		CacheTTL:     cacheTTL,
	}, nil
}

// RequireBucket returns ErrBucketNameNotSet when no bucket is configured
func (c *Config) RequireBucket() error {
	if c.BucketName == "" {
		return ErrBucketNameNotSet
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// SiteURL is the local origin the server answers on
func (c *Config) SiteURL() string {
	return fmt.Sprintf("http://localhost:%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Catalog URL: %s/\n", c.SiteURL())
	fmt.Printf("Upload URL: %s/upload\n", c.SiteURL())
	fmt.Printf("Admin URL: %s/admin\n", c.SiteURL())
	fmt.Printf("Backend: %s\n", c.APIURL)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".game-catalog-state.json"
	}
	return filepath.Join(home, ".game-catalog", "state.json")
}
