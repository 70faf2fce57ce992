// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for nodediag.
//
// Configuration is loaded from a single YAML file named by the
// NODEDIAG_CONFIG environment variable. There is no search path and no
// layering: one file, or built-in defaults when no file is named.
// This keeps a diagnostic run deterministic and auditable; the tool
// reports host state, so hidden configuration overrides are worse
// than none.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete nodediag configuration.
type Config struct {
	// Tools configures the external diagnostic binaries.
	Tools ToolsConfig `yaml:"tools"`

	// Affinity configures default filters for affinity analysis.
	Affinity AffinityConfig `yaml:"affinity"`
}

// ToolsConfig locates and configures the external binaries nodediag
// shells out to.
type ToolsConfig struct {
	// RdmsrBinary is the path to rdmsr. Default: /usr/sbin/rdmsr.
	RdmsrBinary string `yaml:"rdmsr_binary"`

	// RdmsrSudo escalates rdmsr through sudo when not running as
	// root. MSR access needs CAP_SYS_RAWIO. Default: true.
	RdmsrSudo bool `yaml:"rdmsr_sudo"`

	// EthtoolBinary is the path to ethtool. Default: /usr/sbin/ethtool.
	EthtoolBinary string `yaml:"ethtool_binary"`
}

// AffinityConfig carries default ignore lists applied to every
// affinity analysis, merged with whatever the caller passes per
// invocation. Useful for permanently excluding known-noisy cgroups
// (monitoring agents, per-user session slices).
type AffinityConfig struct {
	IgnoreCgroups []string `yaml:"ignore_cgroups"`
	IgnoreProcs   []string `yaml:"ignore_procs"`
}

// Default returns the built-in configuration used when no config file
// is named.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			RdmsrBinary:   "/usr/sbin/rdmsr",
			RdmsrSudo:     true,
			EthtoolBinary: "/usr/sbin/ethtool",
		},
	}
}

// Load returns the configuration from the file named by the
// NODEDIAG_CONFIG environment variable, or the defaults when the
// variable is unset. An unreadable or malformed named file is an
// error, never a silent fallback.
func Load() (*Config, error) {
	path := os.Getenv("NODEDIAG_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from an explicit path. Fields absent
// from the file keep their defaults; fields unknown to this version
// are rejected so typos fail loudly.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
