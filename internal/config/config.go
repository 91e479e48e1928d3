// Package config loads the quotes configuration from TOML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/go-scripts/quotes/internal/browser"
	"github.com/go-scripts/quotes/internal/crawler"
)

// Duration is a time.Duration written as a Go duration string ("1s", "50ms").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

type Selectors struct {
	Item       string   `toml:"item"`
	Results    string   `toml:"results"`
	Text       string   `toml:"text"`
	Author     string   `toml:"author"`
	Image      string   `toml:"image"`
	ImageAttrs []string `toml:"image_attrs"`
	Next       string   `toml:"next"`
	NextText   string   `toml:"next_text"`
	Disabled   string   `toml:"disabled"`
	NotFound   string   `toml:"not_found"`
}

type Scraper struct {
	BaseURL           string    `toml:"base_url"`
	NavigationTimeout Duration  `toml:"navigation_timeout"`
	ResultsTimeout    Duration  `toml:"results_timeout"`
	MaxPages          int       `toml:"max_pages"`
	ItemDelay         Duration  `toml:"item_delay"`
	PageDelay         Duration  `toml:"page_delay"`
	Selectors         Selectors `toml:"selectors"`
}

type Browser struct {
	Headless  bool   `toml:"headless"`
	UserAgent string `toml:"user_agent"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	ExecPath  string `toml:"exec_path"`
	NoSandbox bool   `toml:"no_sandbox"`
}

type Server struct {
	Listen        string `toml:"listen"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

// Store drivers.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Store struct {
	Driver string `toml:"driver"`
	// DSN is a Postgres connection string or a sqlite file path.
	DSN string `toml:"dsn"`
}

// Image backends.
const (
	BackendSupabase = "supabase"
	BackendDir      = "dir"
)

type Images struct {
	Enabled     bool   `toml:"enabled"`
	Backend     string `toml:"backend"`
	SupabaseURL string `toml:"supabase_url"`
	SupabaseKey string `toml:"supabase_key"`
	Bucket      string `toml:"bucket"`
	Dir         string `toml:"dir"`
	PublicBase  string `toml:"public_base"`
}

// Config is the full application configuration.
type Config struct {
	Scraper Scraper `toml:"scraper"`
	Browser Browser `toml:"browser"`
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	Images  Images  `toml:"images"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	opts := crawler.DefaultOptions()
	sel := opts.Selectors
	b := browser.DefaultOptions()

	return &Config{
		Scraper: Scraper{
			BaseURL:           opts.BaseURL,
			NavigationTimeout: Duration(opts.NavigationTimeout),
			ResultsTimeout:    Duration(opts.ResultsTimeout),
			MaxPages:          opts.MaxPages,
			ItemDelay:         Duration(opts.ItemDelay),
			PageDelay:         Duration(opts.PageDelay),
			Selectors: Selectors{
				Item:       sel.Item,
				Results:    sel.Results,
				Text:       sel.Text,
				Author:     sel.Author,
				Image:      sel.Image,
				ImageAttrs: sel.ImageAttrs,
				Next:       sel.Next,
				NextText:   sel.NextText,
				Disabled:   sel.Disabled,
				NotFound:   sel.NotFoundMarker,
			},
		},
		Browser: Browser{
			Headless:  b.Headless,
			UserAgent: b.UserAgent,
			Width:     b.Width,
			Height:    b.Height,
		},
		Server: Server{
			Listen:        "127.0.0.1:8000",
			MaxConcurrent: 4,
		},
		Store: Store{Driver: DriverNone},
		Images: Images{
			Backend: BackendSupabase,
			Bucket:  "quote-images",
		},
	}
}

// DefaultPath returns ~/.config/quotes/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "quotes", "config.toml"), nil
}

// Load reads the file at path (DefaultPath when empty), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("QUOTES_BASE_URL"); v != "" {
		c.Scraper.BaseURL = v
	}
	if v := getenv("QUOTES_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	// DATABASE_URL always names a Postgres database.
	if v := getenv("DATABASE_URL"); v != "" && c.Store.Driver != DriverSQLite {
		c.Store.Driver = DriverPostgres
		c.Store.DSN = v
	}
	if v := getenv("SUPABASE_URL"); v != "" {
		c.Images.SupabaseURL = v
	}
	key := getenv("SUPABASE_SERVICE_ROLE_KEY")
	if key == "" {
		key = getenv("SUPABASE_KEY")
	}
	if key != "" {
		c.Images.SupabaseKey = key
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scraper.BaseURL) == "" {
		return errors.New("scraper.base_url must not be empty")
	}
	if c.Scraper.MaxPages < 1 {
		return fmt.Errorf("scraper.max_pages must be positive, got %d", c.Scraper.MaxPages)
	}
	if c.Scraper.NavigationTimeout <= 0 {
		return fmt.Errorf("scraper.navigation_timeout must be positive, got %s", time.Duration(c.Scraper.NavigationTimeout))
	}
	if c.Scraper.ResultsTimeout <= 0 {
		return fmt.Errorf("scraper.results_timeout must be positive, got %s", time.Duration(c.Scraper.ResultsTimeout))
	}
	sel := c.Scraper.Selectors
	for _, f := range []struct{ key, value string }{
		{"item", sel.Item},
		{"results", sel.Results},
		{"text", sel.Text},
		{"author", sel.Author},
		{"not_found", sel.NotFound},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("scraper.selectors.%s must not be empty", f.key)
		}
	}
	if c.Server.MaxConcurrent < 1 {
		return fmt.Errorf("server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent)
	}

	switch c.Store.Driver {
	case DriverNone:
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if !c.Images.Enabled {
		return nil
	}
	switch c.Images.Backend {
	case BackendSupabase:
		if c.Images.SupabaseURL == "" || c.Images.SupabaseKey == "" {
			return errors.New("images.supabase_url and images.supabase_key are required for the supabase backend")
		}
	case BackendDir:
		if c.Images.Dir == "" {
			return errors.New("images.dir is required for the dir backend")
		}
	default:
		return fmt.Errorf("unknown image backend %q", c.Images.Backend)
	}
	return nil
}

// CrawlerOptions converts the scraper section.
func (c *Config) CrawlerOptions() crawler.Options {
	s := c.Scraper
	return crawler.Options{
		BaseURL:           s.BaseURL,
		NavigationTimeout: time.Duration(s.NavigationTimeout),
		ResultsTimeout:    time.Duration(s.ResultsTimeout),
		MaxPages:          s.MaxPages,
		ItemDelay:         time.Duration(s.ItemDelay),
		PageDelay:         time.Duration(s.PageDelay),
		Selectors: crawler.Selectors{
			Item:           s.Selectors.Item,
			Results:        s.Selectors.Results,
			Text:           s.Selectors.Text,
			Author:         s.Selectors.Author,
			Image:          s.Selectors.Image,
			ImageAttrs:     s.Selectors.ImageAttrs,
			Next:           s.Selectors.Next,
			NextText:       s.Selectors.NextText,
			Disabled:       s.Selectors.Disabled,
			NotFoundMarker: s.Selectors.NotFound,
		},
	}
}

// BrowserOptions converts the browser section.
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options(c.Browser)
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
