// Package config loads service configuration with Viper from a config.yml
// found under cmd/<service>/ (or given explicitly), an optional .env file
// loaded through godotenv, and environment variable overrides.
//
//	var cfg gateway.Config
//	err := config.LoadConfig("predict-gateway", &cfg, config.WithEnvPrefix("GATEWAY"))
//
// With a prefix, GATEWAY_SERVER_PORT sets server.port. Without one, only
// variables naming keys already present in the file override them.
package config
