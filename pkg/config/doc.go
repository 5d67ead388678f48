// Package config provides configuration management for the inference gateway.
//
// Configuration is loaded from a YAML file, completed with defaults,
// optionally overridden from the environment and then validated. There is no
// process-wide configuration instance: the loaded *Config is handed to the
// components that need it.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// A .env file can be loaded into the environment first with LoadDotEnv.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GATEWAY_SECTION_FIELD.
// For example:
//
//   - GATEWAY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GATEWAY_GATEWAY_MAX_CONCURRENT overrides gateway.max_concurrent
//   - GATEWAY_SECURITY_AUTH_JWT_SECRET overrides security.auth.jwt.secret
//
// # Validation
//
// Validate collects every problem into a ValidationError made of FieldError
// values, so a broken file is reported in one pass.
package config
