package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/provider/htmldoc"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "atlasharvest"

	// DefaultPageSize is the largest option of the listing's page-size select.
	DefaultPageSize = "100"

	// DefaultLoadTimeout bounds the wait for the listing table after the
	// first load. The listing is slow on the first request of a session.
	DefaultLoadTimeout = 20 * time.Second

	// DefaultElementTimeout bounds the waits for controls and for the table
	// between pages.
	DefaultElementTimeout = 10 * time.Second

	// DefaultSizeSettle is the pause after choosing the page size.
	DefaultSizeSettle = 3 * time.Second

	// DefaultViewSettle is the pause after switching to the detailed view.
	DefaultViewSettle = 3 * time.Second

	// DefaultPageSettle is the pause after moving to the next page.
	DefaultPageSettle = 2 * time.Second

	// DefaultBatchPause is the pause between score types with --all-types.
	DefaultBatchPause = 10 * time.Second

	// DefaultHTTPTimeout is the per-request timeout of the HTTP fetcher.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryCount is how often a failed request is retried.
	DefaultRetryCount = 2

	// DefaultConcurrency is the number of partitions decoded in parallel.
	DefaultConcurrency = 4

	// DefaultOutputFile is the canonical dataset written by normalize.
	DefaultOutputFile = "data.json"
)

// Config holds all configuration options for atlasharvest.
// It is populated from CLI flags and the config file and passed down
// explicitly.
type Config struct {
	// BaseURL is the listing host. Score types add their own path.
	BaseURL string

	// ScoreTypes are the score types to crawl, in order.
	ScoreTypes []model.ScoreType

	// AllTypes crawls every score type in batch order and overrides
	// ScoreTypes.
	AllTypes bool

	// OutputPath overrides the partition location. With one score type it
	// is the partition file; with several it is the directory holding the
	// universities_data_<type>.json files.
	OutputPath string

	// Headless is accepted for compatibility. The HTML engine never opens a
	// window.
	Headless bool

	// PageSize is the option value chosen in the page-size select.
	PageSize string

	// LoadTimeout bounds the wait for the listing table after a load.
	LoadTimeout time.Duration

	// ElementTimeout bounds the waits for controls and the table between
	// pages.
	ElementTimeout time.Duration

	SizeSettle time.Duration
	ViewSettle time.Duration
	PageSettle time.Duration

	// BatchPause is the pause between score types in a batch.
	BatchPause time.Duration

	// MaxPages stops a crawl after that many pages. 0 means no limit.
	MaxPages int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// HTTPTimeout is the per-request timeout.
	HTTPTimeout time.Duration

	// RetryCount is how often a failed request is retried.
	RetryCount int

	// Concurrency is the number of partitions normalize decodes in parallel.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path given with --config. When empty the
	// .atlasharvest file is searched in the current and home directories.
	ConfigFilePath string

	// File holds the loaded config file, or nil when there is none.
	File *File

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:        model.DefaultBaseURL,
		PageSize:       DefaultPageSize,
		LoadTimeout:    DefaultLoadTimeout,
		ElementTimeout: DefaultElementTimeout,
		SizeSettle:     DefaultSizeSettle,
		ViewSettle:     DefaultViewSettle,
		PageSettle:     DefaultPageSettle,
		BatchPause:     DefaultBatchPause,
		UserAgent:      htmldoc.DefaultUserAgent,
		HTTPTimeout:    DefaultHTTPTimeout,
		RetryCount:     DefaultRetryCount,
		Concurrency:    DefaultConcurrency,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for atlasharvest.
// On Linux: ~/.local/share/atlasharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for atlasharvest.
// On Linux: ~/.config/atlasharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Targets returns the score types to crawl: all of them with AllTypes,
// otherwise ScoreTypes.
func (c *Config) Targets() []model.ScoreType {
	if c.AllTypes {
		return model.AllScoreTypes()
	}
	return c.ScoreTypes
}

// PartitionPath returns where the records of st are stored.
func (c *Config) PartitionPath(st model.ScoreType) string {
	switch {
	case c.OutputPath == "":
		return st.PartitionFile()
	case len(c.Targets()) == 1:
		return c.OutputPath
	default:
		return filepath.Join(c.OutputPath, st.PartitionFile())
	}
}

// ScoreTypeConfig returns the config file overrides for st merged over the
// file defaults. Without a config file it returns the zero value.
func (c *Config) ScoreTypeConfig(st model.ScoreType) ScoreTypeConfig {
	if c.File == nil {
		return ScoreTypeConfig{}
	}
	return c.File.ScoreTypeConfig(st.String())
}

// Validate checks the configuration for a crawl and returns the first
// problem found.
func (c *Config) Validate() error {
	targets := c.Targets()
	if len(targets) == 0 {
		return ErrNoScoreType
	}
	for _, st := range targets {
		if _, err := model.ParseScoreType(st.String()); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownScoreType, st)
		}
	}

	if err := validateBaseURL(c.BaseURL); err != nil {
		return err
	}

	if c.LoadTimeout <= 0 || c.ElementTimeout <= 0 || c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if err := validatePageSize(c.PageSize); err != nil {
		return err
	}

	if c.SizeSettle < 0 || c.ViewSettle < 0 || c.PageSettle < 0 || c.BatchPause < 0 {
		return ErrInvalidDelay
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.File != nil {
		for name, sc := range c.File.ScoreTypes {
			if _, err := model.ParseScoreType(name); err != nil {
				return fmt.Errorf("%w: %q in config file", ErrUnknownScoreType, name)
			}
			if sc.PageSize != "" {
				if err := validatePageSize(sc.PageSize); err != nil {
					return err
				}
			}
			if sc.BaseURL != "" {
				if err := validateBaseURL(sc.BaseURL); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func validatePageSize(size string) error {
	n, err := strconv.Atoi(size)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, size)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return nil
}
