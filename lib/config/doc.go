// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the montage
// tool.
//
// Configuration comes from a single file: the MONTAGE_CONFIG
// environment variable or a --config flag names it explicitly, and
// otherwise the standard user location (~/.config/montage/config.yaml
// on Linux) is used when it exists. A missing file is not an error;
// the tool runs on defaults.
//
// The file may contain named profiles that override base values when
// the profile key (or MONTAGE_PROFILE) selects one. Variable
// expansion is performed on media search paths after loading: ${HOME}
// and ${VAR:-default} patterns are expanded. No other environment
// variables override config values.
//
// Key exports:
//
//   - [Config] -- frame rate and track defaults, theme, media search
//     paths, bundle compression default
//   - [Default] -- returns a Config with the tool's defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other Montage packages.
package config
