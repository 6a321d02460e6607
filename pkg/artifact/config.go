package artifact

// S3Config configures optional off-instance artifact retention.
type S3Config struct {
	// Enabled turns on the S3 copy of every export artifact.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region. Default: us-east-1
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible storage
	// (MinIO, Localstack). Empty uses AWS.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey are static credentials. When
	// empty the default AWS credential chain applies.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// KeyPrefix is prepended to every object key.
	// Example: "emporium/seeds/"
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// ForcePathStyle uses path-style addressing, required by most
	// S3-compatible servers.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`
}

// Config configures artifact storage for bootstrap.
type Config struct {
	// Dir is the local directory export artifacts are written to.
	// Default: <state_dir>/artifacts
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Keep retains the local artifact after a successful import
	// instead of removing it during cleanup.
	// Default: false
	Keep bool `mapstructure:"keep" yaml:"keep"`

	// S3 configures optional off-instance retention.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// ApplyDefaults fills in missing configuration with default values.
//
// Dir is left alone: it derives from the instance state directory,
// which only the top-level configuration knows.
func (c *Config) ApplyDefaults() {
	if c.S3.Enabled && c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}
