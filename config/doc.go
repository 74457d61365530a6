// Package config provides configuration loading and validation for rcindex.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (RCINDEX_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"rcindex.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with RCINDEX_ prefix:
//   - server.port → RCINDEX_SERVER_PORT
//   - scratch.dir → RCINDEX_SCRATCH_DIR
//   - rclone.timeout → RCINDEX_RCLONE_TIMEOUT
//
// # Per-request Settings
//
// EnvSource is separate from Load. It reads USERNAME, PASSWORD,
// CONFIG_BASE64, CONFIG_URL and DARK_MODE without a prefix, once per request.
package config
