package bootstrap

import (
	"cursedcompass-backend/internal/components/configutil"
	"cursedcompass-backend/internal/components/sqliteutil"
	"cursedcompass-backend/internal/service"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// EnvPrefix prefixes every environment override, ex. CURSED_PORT.
const EnvPrefix = "CURSED"

type HotelConfig struct {
	Id string `json:"id" envconfig:"ID"`
	// BaseUrl is the booking system's host.
	BaseUrl      string `json:"base_url" envconfig:"BASE_URL"`
	LandingPath  string `json:"landing_path" envconfig:"LANDING_PATH"`
	PropertyCode string `json:"property_code" envconfig:"PROPERTY_CODE"`
	// IdPrefix prefixes the synthesized ids of parsed rooms.
	IdPrefix string `json:"id_prefix" envconfig:"ID_PREFIX"`
}

type ScraperConfig struct {
	TimeoutSeconds    int     `json:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	MaxRedirects      int     `json:"max_redirects" envconfig:"MAX_REDIRECTS"`
	MinInventory      int     `json:"min_inventory" envconfig:"MIN_INVENTORY"`
	RequestsPerSecond float64 `json:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	CloudflareBypass  bool    `json:"cloudflare_bypass" envconfig:"CLOUDFLARE_BYPASS"`
	// DumpDir is where raw availability responses are kept, empty disables it.
	DumpDir string `json:"dump_dir" envconfig:"DUMP_DIR"`
}

// Timeout bounds each request to the booking system.
func (c ScraperConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CheckTimeout bounds a whole check, which is two requests.
func (c ScraperConfig) CheckTimeout() time.Duration {
	return 2 * c.Timeout()
}

type Config struct {
	Port    int                `json:"port" envconfig:"PORT"`
	Verbose bool               `json:"verbose" envconfig:"VERBOSE"`
	Cors    service.CorsConfig `json:"cors" envconfig:"CORS"`
	History sqliteutil.Config  `json:"history" envconfig:"HISTORY"`
	Hotel   HotelConfig        `json:"hotel" envconfig:"HOTEL"`
	Scraper ScraperConfig      `json:"scraper" envconfig:"SCRAPER"`
}

func DefaultConfig() Config {
	return Config{
		Port: 8000,
		History: sqliteutil.Config{
			File: "data/history.db",
		},
		Hotel: HotelConfig{
			Id:           "jerome-grand",
			BaseUrl:      "https://live.ipms247.com",
			LandingPath:  "book-rooms-jeromegrandhotel",
			PropertyCode: "10246",
			IdPrefix:     "jr",
		},
		Scraper: ScraperConfig{
			TimeoutSeconds:    30,
			MaxRedirects:      5,
			MinInventory:      2,
			RequestsPerSecond: 2,
			DumpDir:           "debug_responses",
		},
	}
}

// LoadConfig reads the config file at `path` (and its .local override) if it exists,
// fills what it leaves out with DefaultConfig and applies environment overrides last.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = configutil.WithDefaults(&cfg, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	err = configutil.ApplyEnv(EnvPrefix, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
