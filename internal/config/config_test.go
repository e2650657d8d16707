package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.FrameNo != DefaultFrameNo {
		t.Errorf("FrameNo = %q, want %q", cfg.FrameNo, DefaultFrameNo)
	}
	if cfg.InitialDelay != DefaultInitialDelay {
		t.Errorf("InitialDelay = %v, want %v", cfg.InitialDelay, DefaultInitialDelay)
	}
	if cfg.DBDir == "" || cfg.ImageDir == "" {
		t.Error("data directories not defaulted")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestVehicleBaseURL(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	got := cfg.VehicleBaseURL()

	want := DefaultBaseURL + "/delica_space_gear/pd6w/hseue9/"
	if got != want {
		t.Errorf("VehicleBaseURL() = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "/") {
		t.Error("vehicle base URL must end with a slash")
	}
}

func TestDBPath(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.DBDir = "/tmp/delica-test"

	if got := cfg.DBPath(); !strings.HasSuffix(got, DBFileName) {
		t.Errorf("DBPath() = %q, want suffix %q", got, DBFileName)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing vehicle path",
			mutate:  func(c *Config) { c.VehiclePath = "" },
			wantErr: ErrNoVehicle,
		},
		{
			name:    "missing frame number",
			mutate:  func(c *Config) { c.FrameNo = "" },
			wantErr: ErrNoFrameNo,
		},
		{
			name:    "min delay above max delay",
			mutate:  func(c *Config) { c.MinDelay = 2 * time.Minute },
			wantErr: ErrInvalidDelayBounds,
		},
		{
			name:    "multiplier at or below one",
			mutate:  func(c *Config) { c.BackoffMultiplier = 1.0 },
			wantErr: ErrInvalidBackoffMultiplier,
		},
		{
			name:    "zero retries",
			mutate:  func(c *Config) { c.FetchRetries = 0 },
			wantErr: ErrInvalidFetchRetries,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
