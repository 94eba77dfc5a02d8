// Package config provides core configuration structures and utilities for the uploader.
// This module defines Fx providers for configuration-related components.
package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Surfin.System.Logging
}

// NewUploadConfigProvider extracts *UploadConfig from *Config.
func NewUploadConfigProvider(cfg *Config) *UploadConfig {
	return &cfg.Surfin.Upload
}

// NewObservabilityConfigProvider extracts *ObservabilityConfig from *Config.
func NewObservabilityConfigProvider(cfg *Config) *ObservabilityConfig {
	return &cfg.Surfin.Observability
}

// Module provides configuration sub-sections and the EnvironmentExpander to Fx.
var Module = fx.Options(
	fx.Provide(
		NewLoggingConfigProvider,
		NewUploadConfigProvider,
		NewObservabilityConfigProvider,
	),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
