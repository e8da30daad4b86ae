package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr         string
	CatalogAddr  string
	CatalogUser  string
	CatalogPass  string
	SecOrchAddr  string
	PollInterval time.Duration
	DBPath       string
	APIKeyHash   string
	Debug        bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("NMTD_ADDR", ":8443")
	cfg.CatalogAddr = getEnv("NMTD_CATALOG", "http://openslice:8080")
	cfg.CatalogUser = getEnv("NMTD_CATALOG_USER", "admin")
	cfg.CatalogPass = getEnv("NMTD_CATALOG_PASS", "admin")
	cfg.SecOrchAddr = getEnv("NMTD_SECORCH", "")
	cfg.PollInterval = getEnvDuration("NMTD_POLL_INTERVAL", 60*time.Second)
	cfg.DBPath = getEnv("NMTD_DB", getDefaultDBPath())
	cfg.APIKeyHash = getEnv("NMTD_API_KEY_HASH", "")
	cfg.Debug = getEnvBool("NMTD_DEBUG", false)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.CatalogAddr, "catalog", cfg.CatalogAddr, "Service Catalog base URL")
	flag.StringVar(&cfg.CatalogUser, "catalog-user", cfg.CatalogUser, "Service Catalog username")
	flag.StringVar(&cfg.CatalogPass, "catalog-pass", cfg.CatalogPass, "Service Catalog password")
	flag.StringVar(&cfg.SecOrchAddr, "secorch", cfg.SecOrchAddr, "Security Orchestrator base URL (empty to disable forwarding)")
	flag.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Catalog polling interval")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.StringVar(&cfg.APIKeyHash, "api-key-hash", cfg.APIKeyHash, "bcrypt hash of the operator API key (empty disables auth)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "nmtd.db"
	}

	nmtdDir := filepath.Join(home, ".nmtd")
	if err := os.MkdirAll(nmtdDir, 0755); err != nil {
		log.Printf("Warning: Could not create .nmtd directory, using current dir: %v", err)
		return "nmtd.db"
	}

	return filepath.Join(nmtdDir, "nmtd.db")
}
