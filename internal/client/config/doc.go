// Package config loads runtime configuration for the gophnotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseJson) selected via -c / -config
//     or $GOPHNOTES_CONFIG. A .yaml or .yml extension selects YAML.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_dsn": "gophnotes.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "s3_region": "us-east-1",
//	  "s3_bucket": "gophnotes",
//	  "s3_base_endpoint": "http://127.0.0.1:9000",
//	  "s3_access_key": "minioadmin",
//	  "s3_secret_key": "minioadmin",
//	  "image_url_expiry": "15m",
//	  "image_scale": 0.1,
//	  "mutation_timeout": "30s",
//	  "mutation_error_policy": "log"
//	}
package config
