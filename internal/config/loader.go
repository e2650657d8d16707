package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".delica-crawler.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML shape of the configuration file. All fields are optional;
// zero values leave the corresponding Config field untouched.
type File struct {
	BaseURL     string `yaml:"base_url"`
	VehiclePath string `yaml:"vehicle_path"`
	FrameName   string `yaml:"frame_name"`
	TrimCode    string `yaml:"trim_code"`
	FrameNo     string `yaml:"frame_no"`

	InitialDelay      time.Duration `yaml:"initial_delay"`
	MinDelay          time.Duration `yaml:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	FetchRetries      int           `yaml:"fetch_retries"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	MaxBodySize       int64         `yaml:"max_body_size"`

	DBDir    string `yaml:"db_dir"`
	ImageDir string `yaml:"image_dir"`
}

// LoadConfigFile loads crawler configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle that error based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply overlays the non-zero fields of the file onto the config.
// Flag values are applied after this, so the precedence is
// defaults < config file < flags.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.VehiclePath != "" {
		c.VehiclePath = f.VehiclePath
	}
	if f.FrameName != "" {
		c.FrameName = f.FrameName
	}
	if f.TrimCode != "" {
		c.TrimCode = f.TrimCode
	}
	if f.FrameNo != "" {
		c.FrameNo = f.FrameNo
	}
	if f.InitialDelay != 0 {
		c.InitialDelay = f.InitialDelay
	}
	if f.MinDelay != 0 {
		c.MinDelay = f.MinDelay
	}
	if f.MaxDelay != 0 {
		c.MaxDelay = f.MaxDelay
	}
	if f.BackoffMultiplier != 0 {
		c.BackoffMultiplier = f.BackoffMultiplier
	}
	if f.FetchRetries != 0 {
		c.FetchRetries = f.FetchRetries
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
		c.ImageDir = filepath.Join(f.DBDir, "images")
	}
	if f.ImageDir != "" {
		c.ImageDir = f.ImageDir
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .delica-crawler.yaml in the current directory
//  3. Look for it in the XDG config directory
//  4. Look for it in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
