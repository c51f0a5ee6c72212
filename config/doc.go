// Package config provides configuration loading and validation for h2server.
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
//  3. Environment variables (H2SERVER_ prefix)
//  4. CLI flags
//
// Without explicit files, h2server.yaml in the working directory is read if present.
//
// # Usage
//
//	cfg, err := config.Load([]string{"h2server.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ep, err := cfg.Server.Endpoint()
//
// # Environment Variables
//
// All config keys map to environment variables with H2SERVER_ prefix:
//   - server.port → H2SERVER_SERVER_PORT
//   - files.root → H2SERVER_FILES_ROOT
//   - log.requests → H2SERVER_LOG_REQUESTS
//
// # Routes
//
// Extra routes are declared ahead of the built-in catch-all, template and
// script routes:
//
//	routes:
//	  - match: "/api/**"
//	    proxy: http://localhost:3000
//	  - match: "*.md"
//	    static: /docs-overlay
//	    break: true
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 0-65535, where 0 picks a free port
//   - Every route needs a match pattern
//   - Proxy targets must be URLs
//   - Log level must be debug, info, warn, or error
package config
