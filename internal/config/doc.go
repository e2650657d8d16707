// Package config provides configuration management for the crawler,
// combining documented defaults, an optional YAML config file, and CLI flags.
package config
