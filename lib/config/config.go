// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// compressionChoices are the accepted bundle_compression values.
// "auto" probes each media file and picks per entry.
var compressionChoices = []string{"auto", "none", "lz4", "zstd"}

// Config is the montage tool configuration.
type Config struct {
	// FrameRate is the default frame rate for new timelines.
	FrameRate float64 `yaml:"frame_rate"`

	// VideoTracks and AudioTracks are the track counts new
	// timelines start with.
	VideoTracks int `yaml:"video_tracks"`
	AudioTracks int `yaml:"audio_tracks"`

	// Theme names the terminal color theme.
	Theme string `yaml:"theme"`

	// MediaPaths are directories searched when locating media by
	// base name. Entries may use ${VAR} expansion.
	MediaPaths []string `yaml:"media_paths"`

	// BundleCompression is the default for bundle creation: auto,
	// none, lz4, or zstd.
	BundleCompression string `yaml:"bundle_compression"`

	// Profile selects a named profile from Profiles. The
	// MONTAGE_PROFILE environment variable takes precedence over
	// this key.
	Profile string `yaml:"profile"`

	// Profiles are named override sections, applied over the base
	// values when selected.
	Profiles map[string]*Overrides `yaml:"profiles,omitempty"`
}

// Overrides contains the fields a profile can override. Zero values
// leave the base value in place.
type Overrides struct {
	FrameRate         float64  `yaml:"frame_rate,omitempty"`
	VideoTracks       int      `yaml:"video_tracks,omitempty"`
	AudioTracks       int      `yaml:"audio_tracks,omitempty"`
	Theme             string   `yaml:"theme,omitempty"`
	MediaPaths        []string `yaml:"media_paths,omitempty"`
	BundleCompression string   `yaml:"bundle_compression,omitempty"`
}

// Default returns the default configuration. These are the values
// the tool runs with when no config file exists.
func Default() *Config {
	return &Config{
		FrameRate:         24,
		VideoTracks:       1,
		AudioTracks:       1,
		Theme:             "montage",
		BundleCompression: "auto",
	}
}

// Load loads configuration from the MONTAGE_CONFIG environment
// variable when set, otherwise from the standard user location
// (os.UserConfigDir()/montage/config.yaml) when that file exists,
// otherwise returns defaults. An explicitly named file that cannot
// be read is an error; an absent standard file is not.
func Load() (*Config, error) {
	if path := os.Getenv("MONTAGE_CONFIG"); path != "" {
		return LoadFile(path)
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(configDir, "montage", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment
// variables do not override config values, with two deliberate
// exceptions: MONTAGE_PROFILE selects the profile, and ${VAR}
// patterns inside media paths expand for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.applyProfile(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.expandVariables()

	return cfg, nil
}

// applyProfile merges the selected profile's overrides into the base
// values. Selecting a profile that the file does not define is an
// error; selecting none is fine.
func (c *Config) applyProfile() error {
	name := os.Getenv("MONTAGE_PROFILE")
	if name == "" {
		name = c.Profile
	}
	if name == "" {
		return nil
	}

	overrides, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q is not defined", name)
	}
	if overrides == nil {
		return nil
	}

	if overrides.FrameRate != 0 {
		c.FrameRate = overrides.FrameRate
	}
	if overrides.VideoTracks != 0 {
		c.VideoTracks = overrides.VideoTracks
	}
	if overrides.AudioTracks != 0 {
		c.AudioTracks = overrides.AudioTracks
	}
	if overrides.Theme != "" {
		c.Theme = overrides.Theme
	}
	if overrides.MediaPaths != nil {
		c.MediaPaths = overrides.MediaPaths
	}
	if overrides.BundleCompression != "" {
		c.BundleCompression = overrides.BundleCompression
	}

	c.Profile = name
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// media search paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	for i, path := range c.MediaPaths {
		c.MediaPaths[i] = expandVars(path, vars)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %g", c.FrameRate))
	}
	if c.VideoTracks < 0 {
		errs = append(errs, fmt.Errorf("video_tracks must not be negative, got %d", c.VideoTracks))
	}
	if c.AudioTracks < 0 {
		errs = append(errs, fmt.Errorf("audio_tracks must not be negative, got %d", c.AudioTracks))
	}
	if c.Theme == "" {
		errs = append(errs, fmt.Errorf("theme is required"))
	}
	if !slices.Contains(compressionChoices, c.BundleCompression) {
		errs = append(errs, fmt.Errorf("bundle_compression must be one of: %v", compressionChoices))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LocateMedia searches the configured media paths for a file with
// the given base name and returns the first hit. Mirrors how editors
// resolve moved footage: the configured search paths are tried in
// order.
func (c *Config) LocateMedia(name string) (string, error) {
	for _, dir := range c.MediaPaths {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	if len(c.MediaPaths) == 0 {
		return "", fmt.Errorf("%s not found: no media paths configured", name)
	}
	return "", fmt.Errorf("%s not found in media paths %v", name, c.MediaPaths)
}
