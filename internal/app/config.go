package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

// Constants
const (
	DefaultDataDir    = "data"
	DefaultPort       = 8080
	MarketsFile       = "markets.json"
	MarketInfoPattern = "market_info_%s.json"
	BackupSuffix      = ".backup"
	TmpSuffix         = ".tmp"
	FilePermissions   = 0644

	// Error messages
	ErrAdminModeDisabled    = "Admin mode disabled"
	ErrInvalidDateFormat    = "Invalid date format"
	ErrInvalidYear          = "Invalid year"
	ErrInvalidMonth         = "Invalid month"
	ErrInvalidFormat        = "Invalid format"
	ErrUnknownMarket        = "Unknown market"
	ErrInternalServer       = "Internal server error"
	ErrFailedToReload       = "Failed to reload data"
	ErrFailedToGenerateJSON = "Failed to generate JSON"

	// Mode strings
	ModeServe = "serve"
	ModeAdmin = "admin"

	// ICS constants
	ICSProductID = "-//KitchenCar//Kalender//JA"
	ICSTimezone  = "Asia/Tokyo"
	ICSDomain    = "kitchencar-kalender"
)

// Config holds the runtime settings. Values come from an optional YAML
// file, then environment variables, then command line flags.
type Config struct {
	Port         int           `yaml:"port"`
	DataDir      string        `yaml:"dataDir"`
	DataURL      string        `yaml:"dataUrl"`
	LoadWorkers  int           `yaml:"loadWorkers"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	AuthFile     string        `yaml:"authFile"`
	Scraper      ScraperConfig `yaml:"scraper"`
}

// ScraperConfig controls the scrape subcommand.
type ScraperConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
	Delay     time.Duration `yaml:"delay"`
}

// Global variables
var (
	Settings  = DefaultConfig()
	AdminMode bool
	Source    DataSource

	shopIndex  *calendar.ShopIndex
	IndexMutex sync.RWMutex

	// Now is the clock used for default cursors and feeds.
	Now = time.Now
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Port:         DefaultPort,
		DataDir:      DefaultDataDir,
		LoadWorkers:  calendar.DefaultLoadWorkers,
		FetchTimeout: 10 * time.Second,
		Scraper: ScraperConfig{
			Timeout: 10 * time.Second,
			Delay:   time.Second,
		},
	}
}

// LoadConfig reads the YAML file at path (skipped when empty) and applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITCHENCAR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KITCHENCAR_DATA_URL"); v != "" {
		cfg.DataURL = v
	}
	if v := os.Getenv("KITCHENCAR_LOAD_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LoadWorkers = parsed
		}
	}
	if v := os.Getenv("AUTH_FILE"); v != "" {
		cfg.AuthFile = v
	}
}

// ApplyFlags overrides the port and data directory from command line flags
// (zero values leave the setting untouched) and validates the result.
func (c *Config) ApplyFlags(port int, dataDir string) error {
	if port != 0 {
		c.Port = port
	}
	if dataDir != "" {
		c.DataDir = dataDir
		c.DataURL = ""
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if strings.TrimSpace(c.DataDir) == "" && strings.TrimSpace(c.DataURL) == "" {
		return errors.New("either dataDir or dataUrl is required")
	}
	if c.LoadWorkers <= 0 {
		return errors.New("loadWorkers must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetchTimeout must be positive")
	}
	return nil
}
