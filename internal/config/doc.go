// Package config provides centralized configuration management for the dashboard.
// It loads configuration from the environment and an optional YAML file and
// validates it before any component starts.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML file named by BIKEDASH_CONFIG_FILE, or ./config.yaml, or ./configs/config.yaml
//	3. Default values from the struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BIKEDASH_<SECTION>_<FIELD>:
//
//	BIKEDASH_SERVER_PORT=8080
//	BIKEDASH_UPLOAD_MAX_BYTES=33554432
//	BIKEDASH_SECURITY_RATE_LIMIT_RPS=50
//	BIKEDASH_LOGGING_LEVEL=debug
//	BIKEDASH_TELEMETRY_TRACES_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, config.Default() returns a configuration that needs no
// environment or files.
package config
