package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// DefaultLocations is used when neither WEATHER_LOCATIONS nor LOCATIONS_FILE is set.
var DefaultLocations = []string{
	"Tel Aviv",
	"Jerusalem",
	"New York",
	"London",
	"Tokyo",
	"Paris",
	"Berlin",
	"Sydney",
	"Rio de Janeiro",
	"Cape Town",
}

type AppConfig struct {
	// StoreDriver is "postgres" or "memory".
	StoreDriver   string
	DatabaseURL   string
	DBLogLevel    string
	DBMaxOpenConn int

	// Locations to ingest, as free-text place names.
	Locations []string

	// LookbackDays is how many days before today each run ingests.
	LookbackDays int

	// FetchInterval controls how often the batch runs.
	FetchInterval time.Duration
	HTTPTimeout   time.Duration
	// OutboundRPS caps requests per second to each external API.
	OutboundRPS float64

	// Geocoder is "openmeteo" or "google".
	Geocoder         string
	GoogleMapsAPIKey string
	ArchiveBaseURL   string
	GeocodingBaseURL string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", "postgres"))
	switch cfg.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want postgres or memory", cfg.StoreDriver)
	}
	cfg.DatabaseURL = databaseURL()
	cfg.DBLogLevel = getenvDefault("DB_LOG_LEVEL", "warn")
	cfg.DBMaxOpenConn = getenvInt("DB_MAX_OPEN_CONNS", 5)

	cfg.LookbackDays = getenvInt("LOOKBACK_DAYS", 30)
	if cfg.LookbackDays <= 0 {
		return nil, fmt.Errorf("invalid LOOKBACK_DAYS %d: must be positive", cfg.LookbackDays)
	}

	// Batch interval: default once a day.
	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	rps, err := strconv.ParseFloat(getenvDefault("OUTBOUND_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid OUTBOUND_RPS %q", os.Getenv("OUTBOUND_RPS"))
	}
	cfg.OutboundRPS = rps

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", "openmeteo"))
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.Geocoder == "google" && cfg.GoogleMapsAPIKey == "" {
		return nil, fmt.Errorf("GEOCODER=google requires GOOGLE_MAPS_API_KEY")
	}
	cfg.ArchiveBaseURL = os.Getenv("ARCHIVE_BASE_URL")
	cfg.GeocodingBaseURL = os.Getenv("GEOCODING_BASE_URL")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a key/value DSN
// from the DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getenvDefault("DB_SERVER", "localhost"),
		getenvDefault("DB_PORT", "5432"),
		getenvDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenvDefault("DB_NAME", "weather"),
		getenvDefault("DB_SSLMODE", "disable"),
	)
}

type locationsFile struct {
	Locations []struct {
		Name string `yaml:"name"`
	} `yaml:"locations"`
}

// loadLocations merges WEATHER_LOCATIONS and LOCATIONS_FILE, dropping
// blanks and duplicates while keeping first-seen order.
func loadLocations() ([]string, error) {
	names := strings.Split(os.Getenv("WEATHER_LOCATIONS"), ",")

	if path := os.Getenv("LOCATIONS_FILE"); path != "" {
		fromFile, err := ReadLocationsFile(path)
		if err != nil {
			return nil, err
		}
		names = append(names, fromFile...)
	}

	out := dedupe(names)
	if len(out) == 0 {
		return append([]string(nil), DefaultLocations...), nil
	}
	return out, nil
}

// ReadLocationsFile parses a YAML file of the form
//
//	locations:
//	  - name: London
//	  - name: Cape Town
func ReadLocationsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read LOCATIONS_FILE: %w", err)
	}
	var f locationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse LOCATIONS_FILE %s: %w", path, err)
	}
	names := make([]string, 0, len(f.Locations))
	for _, l := range f.Locations {
		names = append(names, l.Name)
	}
	return dedupe(names), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
