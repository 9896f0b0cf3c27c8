// Package config handles loading and validating server configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (PINHUB_ prefix)
//   - Validation of required fields
//   - Default value handling
//
// Security considerations:
//   - Sensitive values (broker passwords, tokens) should be set via
//     environment variables rather than the config file
//   - The config file should have restricted permissions (0600)
//
// Configuration is loaded once at startup; no runtime overhead after the
// initial load.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
