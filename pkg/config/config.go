// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides runtime configuration loading for agerun.
//
// Configuration is YAML, loaded from disk, with ${VAR}/${VAR:-default}
// environment expansion applied before decoding into typed structs.
//
// Example config:
//
//	logger:
//	  level: info
//	  format: simple
//
//	persistence:
//	  methodology_path: methodology.yaml
//	  agency_path: agency.yaml
//	  watch: true
//
//	http:
//	  addr: ":8080"
//
//	metrics:
//	  enabled: true
package config

import "fmt"

// Config is the root runtime configuration structure.
type Config struct {
	// Logger configures the slog-based application logger.
	Logger LoggerConfig `yaml:"logger,omitempty"`

	// Persistence configures where methodology/agency snapshots live.
	Persistence PersistenceConfig `yaml:"persistence,omitempty"`

	// HTTP configures the optional introspection API.
	HTTP HTTPConfig `yaml:"http,omitempty"`

	// Metrics configures Prometheus metrics collection.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// PersistenceConfig locates the methodology and agency snapshot files.
type PersistenceConfig struct {
	// MethodologyPath is the YAML file methods are loaded from and saved to.
	MethodologyPath string `yaml:"methodology_path,omitempty"`

	// AgencyPath is the YAML file agents are loaded from and saved to.
	AgencyPath string `yaml:"agency_path,omitempty"`

	// Watch enables fsnotify-based reload of MethodologyPath.
	Watch bool `yaml:"watch,omitempty"`
}

// HTTPConfig configures the introspection HTTP API.
type HTTPConfig struct {
	// Addr is the listen address, e.g. ":8080". Empty disables the API.
	Addr string `yaml:"addr,omitempty"`
}

// MetricsConfig configures Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled turns on metrics instrumentation. Default: true.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	c.Logger.SetDefaults()

	if c.Persistence.MethodologyPath == "" {
		c.Persistence.MethodologyPath = "methodology.yaml"
	}
	if c.Persistence.AgencyPath == "" {
		c.Persistence.AgencyPath = "agency.yaml"
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if c.Persistence.MethodologyPath == "" {
		return fmt.Errorf("persistence: methodology_path must not be empty")
	}
	if c.Persistence.AgencyPath == "" {
		return fmt.Errorf("persistence: agency_path must not be empty")
	}
	return nil
}

// MetricsEnabled reports whether metrics collection is turned on.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}
