package storage

import (
	"time"

	"github.com/kbukum/longscribe/validation"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal    = "local"
	ProviderS3       = "s3"
	ProviderSupabase = "supabase"
)

// Default configuration values.
const (
	DefaultProvider        = ProviderLocal
	DefaultBasePath        = "outputs"
	DefaultRegion          = "us-east-1"
	DefaultSignedURLExpiry = 6 * time.Hour
	DefaultPrefix          = "audio"
)

// Config selects and configures one backend. Fields that do not apply to
// the selected provider are ignored.
type Config struct {
	Provider string `mapstructure:"provider" json:"provider" validate:"required,oneof=local s3 supabase"`

	// BasePath roots the local backend.
	BasePath string `mapstructure:"base_path" json:"base_path" validate:"required_if=Provider local"`

	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required_if=Provider s3,required_if=Provider supabase"`
	Region string `mapstructure:"region" json:"region" validate:"required_if=Provider s3"`
	// Endpoint points the S3 client at a compatible service such as MinIO.
	Endpoint       string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`
	AccessKey      string `mapstructure:"access_key" json:"access_key"`
	// SecretKey is the AWS secret key, or the Supabase service-role key.
	SecretKey string `mapstructure:"secret_key" json:"-" validate:"required_if=Provider supabase"`

	// URL is the Supabase project URL.
	URL string `mapstructure:"url" json:"url" validate:"required_if=Provider supabase"`

	// Prefix is prepended to staged audio keys: <prefix>/<run-id>/<file>.
	Prefix          string        `mapstructure:"prefix" json:"prefix"`
	SignedURLExpiry time.Duration `mapstructure:"signed_url_expiry" json:"signed_url_expiry"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.SignedURLExpiry <= 0 {
		c.SignedURLExpiry = DefaultSignedURLExpiry
	}
}

// Validate checks that the fields the selected provider needs are set.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
