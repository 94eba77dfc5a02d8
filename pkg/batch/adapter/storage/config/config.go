package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type" mapstructure:"type"`                         // "local" or "gcs".
	BucketName      string `yaml:"bucket_name" mapstructure:"bucket_name"`           // Default bucket when a call passes none.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"` // Service account key for GCS.
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`                 // Overrides the GCS endpoint, e.g. for an emulator.
	BaseDir         string `yaml:"base_dir" mapstructure:"base_dir"`                 // Root directory for the local adapter.
}
