package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The fetch-delay defaults are deliberately conservative: the source site
// throttles aggressively and publishes no rate contract, so we start slow
// and let the adaptive delay find the floor.
const (
	// DefaultBaseURL is the scheme and host of the parts-diagram site.
	DefaultBaseURL = "https://mitsubishi.epc-data.com"

	// DefaultVehiclePath is the path segment identifying the vehicle model.
	DefaultVehiclePath = "delica_space_gear"

	// DefaultFrameName identifies the chassis variant within the vehicle path.
	DefaultFrameName = "pd6w"

	// DefaultTrimCode identifies the trim level within the frame path.
	DefaultTrimCode = "hseue9"

	// DefaultFrameNo is the frame number sent as the frame_no query
	// parameter on every request. The site uses it to resolve
	// production-date-specific part applicability.
	DefaultFrameNo = "PD6W-0500900"

	// DefaultInitialDelay is the pre-fetch delay at the start of a run.
	// 3 seconds has proven slow enough to avoid tripping the site's
	// throttling on a fresh crawl.
	DefaultInitialDelay = 3 * time.Second

	// DefaultMinDelay is the floor the delay relaxes toward after
	// consecutive successful fetches.
	DefaultMinDelay = 1 * time.Second

	// DefaultMaxDelay caps the delay growth under sustained throttling.
	DefaultMaxDelay = 60 * time.Second

	// DefaultBackoffMultiplier scales the delay up on HTTP 429 or
	// transport errors, and back down on success.
	DefaultBackoffMultiplier = 1.5

	// DefaultFetchRetries is how many times the crawler re-attempts a
	// single URL within one processing turn before recording it as failed.
	DefaultFetchRetries = 3

	// DefaultTimeout is the per-request connection timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "delica-crawler/1.0 (parts catalog archiver)"

	// DefaultMaxBodySize limits the response body size to read.
	// Listing and detail pages are well under 1MB; 5MB leaves headroom
	// for diagram images without risking memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "delica-crawler"

	// DBFileName is the SQLite database file name inside the data directory.
	// The delica-tui browser opens the same file.
	DBFileName = "catalog.db"
)

// Config holds all configuration options for the crawler.
// It is populated from defaults, then the optional YAML config file, then
// CLI flags, and passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// BaseURL is the scheme and host of the source site.
	BaseURL string

	// VehiclePath, FrameName and TrimCode compose the fixed URL path
	// prefix identifying the vehicle and trim; every crawled URL lives
	// under this prefix.
	VehiclePath string
	FrameName   string
	TrimCode    string

	// FrameNo is the frame number carried as the frame_no query parameter
	// on every request.
	FrameNo string

	// InitialDelay is the fetch delay at the start of a run.
	InitialDelay time.Duration

	// MinDelay is the floor the adaptive delay relaxes toward on success.
	MinDelay time.Duration

	// MaxDelay caps adaptive delay growth under sustained throttling.
	MaxDelay time.Duration

	// BackoffMultiplier scales the delay on failure and success.
	BackoffMultiplier float64

	// FetchRetries bounds per-URL fetch re-attempts within one turn.
	// Failures beyond this count mark the URL failed; the crawl continues.
	FetchRetries int

	// Timeout is the per-request connection timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug-level log output.
	Verbose bool

	// DBDir is the directory holding the SQLite catalog database.
	// Defaults to the XDG data directory.
	DBDir string

	// ImageDir is the directory diagram illustrations are downloaded to.
	// Defaults to "images" under DBDir.
	ImageDir string

	// ConfigFilePath is the explicit config file path, empty to search
	// the default locations.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on zero
// values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	dataDir := XDGDataDir()
	return &Config{
		BaseURL:           DefaultBaseURL,
		VehiclePath:       DefaultVehiclePath,
		FrameName:         DefaultFrameName,
		TrimCode:          DefaultTrimCode,
		FrameNo:           DefaultFrameNo,
		InitialDelay:      DefaultInitialDelay,
		MinDelay:          DefaultMinDelay,
		MaxDelay:          DefaultMaxDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
		FetchRetries:      DefaultFetchRetries,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		DBDir:             dataDir,
		ImageDir:          filepath.Join(dataDir, "images"),
	}
}

// VehicleBaseURL returns the absolute URL prefix of the vehicle's catalog,
// with a trailing slash. This is the crawl seed and the prefix every
// enqueued URL must live under.
func (c *Config) VehicleBaseURL() string {
	return c.BaseURL + "/" + c.VehiclePath + "/" + c.FrameName + "/" + c.TrimCode + "/"
}

// DBPath returns the full path of the SQLite catalog database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DBDir, DBFileName)
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/delica-crawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// On Linux: ~/.config/delica-crawler
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate once after CLI parsing, before any network
// or database activity, to fail fast with a clear message. We return the
// first error found because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" || c.VehiclePath == "" || c.FrameName == "" || c.TrimCode == "" {
		return ErrNoVehicle
	}
	if c.FrameNo == "" {
		return ErrNoFrameNo
	}
	if c.MinDelay <= 0 || c.MaxDelay < c.MinDelay || c.InitialDelay < c.MinDelay || c.InitialDelay > c.MaxDelay {
		return ErrInvalidDelayBounds
	}
	if c.BackoffMultiplier <= 1.0 {
		return ErrInvalidBackoffMultiplier
	}
	if c.FetchRetries <= 0 {
		return ErrInvalidFetchRetries
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
