package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

var knownFlags = []string{
	"-a", "-i", "-d", "-l", "-log-format",
	"-bucket", "-region", "-s3-endpoint", "-scale", "-policy",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        address and port of the backend server
//	-i int           online check interval in seconds
//	-d string        local session database DSN
//	-l string        log level
//	-log-format      text or json
//	-bucket string   S3 bucket for note images
//	-region string   S3 region
//	-s3-endpoint     S3-compatible endpoint URL
//	-scale float     image downscale factor
//	-policy string   mutation error policy (log|silent)
//
// S3 credentials are read from the config file only.
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket for images")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3-compatible endpoint")
	fs.Float64Var(&cfg.ImageScale, "scale", cfg.ImageScale, "image downscale factor")
	fs.StringVar(&cfg.MutationErrorPolicy, "policy", cfg.MutationErrorPolicy, "mutation error policy (log|silent)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
