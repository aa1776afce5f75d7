package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/listing"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultLanguage       = "default"
	DefaultFetchTimeout   = 10 * time.Second
	DefaultFetchRetries   = 3
	DefaultCacheExpiryDay = 60
)

// Duration is a time.Duration that decodes from strings such as "2s",
// "1500ms" or "3d".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SettingsConfig holds crawler settings.
type SettingsConfig struct {
	Language     string   `yaml:"language"`
	PageDelay    Duration `yaml:"page_delay"`
	FetchTimeout Duration `yaml:"fetch_timeout"`
	FetchRetries int      `yaml:"fetch_retries"`
}

// TMDbConfig holds conversion service credentials.
type TMDbConfig struct {
	APIKey   string `yaml:"apikey"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"base_url"`
}

// CacheConfig controls the conversion cache. An empty path disables it.
type CacheConfig struct {
	Path string `yaml:"path"`
	// Expiration is in days.
	Expiration int `yaml:"expiration"`
}

// FileConfig represents the structure of ~/.imdbsync/config.yaml.
type FileConfig struct {
	Settings  SettingsConfig      `yaml:"settings"`
	TMDb      TMDbConfig          `yaml:"tmdb"`
	Cache     CacheConfig         `yaml:"cache"`
	Selectors listing.Selectors   `yaml:"selectors"`
	Lists     []catalog.ListEntry `yaml:"imdb_lists"`
}

// Dir returns ~/.imdbsync.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".imdbsync"), nil
}

// LoadConfigFile loads configuration from ~/.imdbsync/config.yaml. Returns
// nil if the file doesn't exist (not an error). Returns error if the file
// exists but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadConfigFileFrom(configPath)
}

// LoadConfigFileFrom loads configuration from an explicit path. Unlike
// LoadConfigFile, a missing file is an error.
func LoadConfigFileFrom(configPath string) (*FileConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *FileConfig) ApplyDefaults() {
	if c.Settings.Language == "" {
		c.Settings.Language = DefaultLanguage
	}
	if c.Settings.PageDelay <= 0 {
		c.Settings.PageDelay = Duration(listing.PageDelay)
	}
	if c.Settings.FetchTimeout <= 0 {
		c.Settings.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.Settings.FetchRetries <= 0 {
		c.Settings.FetchRetries = DefaultFetchRetries
	}
	if c.Cache.Expiration <= 0 {
		c.Cache.Expiration = DefaultCacheExpiryDay
	}
	c.Cache.Path = expandHome(c.Cache.Path)
}

// ApplyEnv overrides fields from IMDBSYNC_* variables read through getenv.
func (c *FileConfig) ApplyEnv(getenv func(string) string) error {
	if v := getenv("IMDBSYNC_TMDB_APIKEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := getenv("IMDBSYNC_LANGUAGE"); v != "" {
		c.Settings.Language = v
	}
	if v := getenv("IMDBSYNC_CACHE_PATH"); v != "" {
		c.Cache.Path = expandHome(v)
	}
	if v := getenv("IMDBSYNC_PAGE_DELAY"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMDBSYNC_PAGE_DELAY: %w", err)
		}
		c.Settings.PageDelay = Duration(d)
	}
	return nil
}

// CacheExpiration returns the cache expiration as a duration.
func (c *FileConfig) CacheExpiration() time.Duration {
	return time.Duration(c.Cache.Expiration) * 24 * time.Hour
}

// ParseDuration extends time.ParseDuration to support 'd' (days) and 'w'
// (weeks)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, ok := strings.CutSuffix(s, suffix); ok {
			count, err := strconv.Atoi(n)
			if err != nil {
				return 0, fmt.Errorf("invalid duration: %s", s)
			}
			return time.Duration(count) * unit, nil
		}
	}

	return 0, fmt.Errorf("invalid duration: %s", s)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
