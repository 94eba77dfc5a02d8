package config

// Package config provides structures and utilities for managing application configuration.

import (
	"fmt"
	"strings"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// DefaultDateLayout is the layout used for validity bounds when an uploader does not set one.
const DefaultDateLayout = "2006-01-02 15:04:05"

// UploaderConfig names an uploader implementation and carries its loosely typed properties.
type UploaderConfig struct {
	// Kind selects the implementation ("base_price", "special_price", "group_price",
	// "customer_price", "unique_url_key").
	Kind string `yaml:"kind"`
	// Properties are bound onto the implementation's option struct.
	Properties map[string]interface{} `yaml:"properties"`
}

// UploadConfig holds the settings of one upload run.
type UploadConfig struct {
	// ActivityID selects the staged entities to apply.
	ActivityID int64 `yaml:"activity_id"`
	// Uploader is the key in Uploaders to execute.
	Uploader string `yaml:"uploader"`
	// ContinueOnError keeps processing the remaining groups after a group fails.
	ContinueOnError bool `yaml:"continue_on_error"`
	// FailureLimit caps the failures tolerated when ContinueOnError is set; 0 means unlimited.
	FailureLimit int `yaml:"failure_limit"`
	// ReindexAfterWrite requests a reindex of each mutated product.
	ReindexAfterWrite bool `yaml:"reindex_after_write"`
	// Uploaders is the catalogue of named uploader definitions.
	Uploaders map[string]UploaderConfig `yaml:"uploaders"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // Level is the logging level (e.g., "INFO", "DEBUG").
	JSON  bool   `yaml:"json"`  // JSON switches output from console format to JSON lines.
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// InfrastructureConfig holds logical references to named connections.
type InfrastructureConfig struct {
	// CatalogDBRef is the key under `surfin.database` used for staging and catalog tables.
	CatalogDBRef string `yaml:"catalog_db_ref"`
	// MigrateOnStart applies embedded schema migrations before the run.
	MigrateOnStart bool `yaml:"migrate_on_start"`
	// MigrationsTable is the golang-migrate bookkeeping table.
	MigrationsTable string `yaml:"migrations_table"`
}

// PrometheusConfig configures the Prometheus recorder.
type PrometheusConfig struct {
	PushGatewayURL string `yaml:"push_gateway_url"` // Empty disables pushing at run end.
	JobName        string `yaml:"job_name"`
}

// OTLPConfig configures OTLP exporters.
type OTLPConfig struct {
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // "grpc" or "http".
	Insecure bool   `yaml:"insecure"`
}

// ObservabilityConfig selects the metrics and tracing backends.
type ObservabilityConfig struct {
	// Metrics is "none", "prometheus" or "otel".
	Metrics string `yaml:"metrics"`
	// Tracing is "none" or "otel".
	Tracing     string           `yaml:"tracing"`
	ServiceName string           `yaml:"service_name"`
	Prometheus  PrometheusConfig `yaml:"prometheus"`
	OTLP        OTLPConfig       `yaml:"otlp"`
}

// ReportConfig configures the Parquet run report.
type ReportConfig struct {
	Enabled         bool   `yaml:"enabled"`
	StorageRef      string `yaml:"storage_ref"`
	Bucket          string `yaml:"bucket"`
	OutputBaseDir   string `yaml:"output_base_dir"`
	CompressionType string `yaml:"compression_type"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// MaskedPropertyKeys are property names whose values are masked in logs.
	MaskedPropertyKeys []string `yaml:"masked_property_keys"`
}

// SurfinConfig holds all configuration under the "surfin" top-level key.
type SurfinConfig struct {
	System         SystemConfig         `yaml:"system"`
	Upload         UploadConfig         `yaml:"upload"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Observability  ObservabilityConfig  `yaml:"observability"`
	Report         ReportConfig         `yaml:"report"`
	Security       SecurityConfig       `yaml:"security"`
	// AdapterConfigs holds named database connections, decoded by the database adapter.
	AdapterConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds named storage connections, decoded by the storage adapter.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Surfin         SurfinConfig   `yaml:"surfin"`
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Surfin: SurfinConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: string(LogLevelInfo)},
			},
			Upload: UploadConfig{
				Uploaders: map[string]UploaderConfig{},
			},
			Infrastructure: InfrastructureConfig{
				CatalogDBRef:    "catalog",
				MigrationsTable: "schema_migrations",
			},
			Observability: ObservabilityConfig{
				Metrics:     "none",
				Tracing:     "none",
				ServiceName: "surfin-transporter",
				Prometheus:  PrometheusConfig{JobName: "surfin_transporter"},
				OTLP:        OTLPConfig{Protocol: "grpc"},
			},
			Report: ReportConfig{
				OutputBaseDir:   "reports",
				CompressionType: "SNAPPY",
			},
			Security: SecurityConfig{
				MaskedPropertyKeys: []string{"password", "api_key", "secret"},
			},
			AdapterConfigs: map[string]interface{}{},
			StorageConfigs: map[string]interface{}{},
		},
	}
}

// SelectedUploader returns the definition named by Upload.Uploader.
func (c *Config) SelectedUploader() (string, UploaderConfig, error) {
	name := strings.TrimSpace(c.Surfin.Upload.Uploader)
	if name == "" {
		return "", UploaderConfig{}, exception.NewUploadError(moduleName, exception.KindConfiguration, "surfin.upload.uploader is not set", nil)
	}
	def, ok := c.Surfin.Upload.Uploaders[name]
	if !ok {
		return "", UploaderConfig{}, exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"uploader '%s' is not defined under surfin.upload.uploaders", name)
	}
	return name, def, nil
}

// Validate checks the settings every run depends on.
func (c *Config) Validate() error {
	if c.Surfin.Upload.ActivityID <= 0 {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"surfin.upload.activity_id must be positive, got %d", c.Surfin.Upload.ActivityID)
	}
	_, def, err := c.SelectedUploader()
	if err != nil {
		return err
	}
	if def.Kind == "" {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"uploader '%s' has no kind", c.Surfin.Upload.Uploader)
	}
	if _, ok := c.Surfin.AdapterConfigs[c.Surfin.Infrastructure.CatalogDBRef]; !ok {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"database connection '%s' is not configured", c.Surfin.Infrastructure.CatalogDBRef)
	}
	switch c.Surfin.Observability.Metrics {
	case "", "none", "prometheus", "otel":
	default:
		return exception.NewUploadError(moduleName, exception.KindConfiguration,
			fmt.Sprintf("unknown metrics backend '%s'", c.Surfin.Observability.Metrics), nil)
	}
	if c.Surfin.Report.Enabled && c.Surfin.Report.StorageRef == "" {
		return exception.NewUploadError(moduleName, exception.KindConfiguration, "surfin.report.storage_ref is required when reports are enabled", nil)
	}
	return nil
}
