package config

import "time"

// Config holds runtime settings for the gophnotes CLI.
//
// Units: every interval, expiry and timeout is a time.Duration.
type Config struct {
	// ServerEndpointAddr is host:port of the backend gRPC endpoint.
	ServerEndpointAddr string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration

	// DatabaseDSN locates the local SQLite session cache.
	DatabaseDSN string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is "text" (slog) or "json" (zap).
	LogFormat string

	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	// ImageURLExpiry bounds the lifetime of presigned image URLs.
	ImageURLExpiry time.Duration

	// ImageScale is the linear factor applied to images before upload.
	ImageScale float64
	// MutationTimeout bounds each background create, delete and blob call.
	MutationTimeout time.Duration
	// MutationErrorPolicy is "log" or "silent".
	MutationErrorPolicy string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabaseDSN = "gophnotes.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.S3Bucket = "gophnotes"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.ImageURLExpiry = 15 * time.Minute
	c.ImageScale = 0.10
	c.MutationTimeout = 30 * time.Second
	c.MutationErrorPolicy = "log"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
