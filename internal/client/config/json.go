package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/dmitrijs2005/gophnotes/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig is a DTO used exclusively for config file unmarshalling.
// It relies on timex.Duration so files can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
// YAML files use the same keys.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DatabaseDSN         string         `json:"database_dsn" yaml:"database_dsn"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`

	S3Region       string         `json:"s3_region" yaml:"s3_region"`
	S3Bucket       string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3BaseEndpoint string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3AccessKey    string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	ImageURLExpiry timex.Duration `json:"image_url_expiry" yaml:"image_url_expiry"`

	ImageScale          float64        `json:"image_scale" yaml:"image_scale"`
	MutationTimeout     timex.Duration `json:"mutation_timeout" yaml:"mutation_timeout"`
	MutationErrorPolicy string         `json:"mutation_error_policy" yaml:"mutation_error_policy"`
}

// parseJson overlays Config with values loaded from a config file. Files
// ending in .yaml or .yml are decoded as YAML, anything else as JSON.
//
// The file path comes from -c / -config, or $GOPHNOTES_CONFIG
// (flagx.ConfigFileFlag). Without one, nothing is loaded.
//
// Only keys present with a non-zero value override cfg, so a file may set
// just the fields it cares about. Read and unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	jc, err := readConfigFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setDuration(&cfg.ImageURLExpiry, jc.ImageURLExpiry)
	setDuration(&cfg.MutationTimeout, jc.MutationTimeout)
	setString(&cfg.MutationErrorPolicy, jc.MutationErrorPolicy)
	if jc.ImageScale != 0 {
		cfg.ImageScale = jc.ImageScale
	}
}

func readConfigFile(path string) (JsonConfig, error) {
	var jc JsonConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return jc, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		return jc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return jc, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
