// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, an optional config.yaml, a local .env file and
// environment variables). It provides type-safe access to application settings
// while keeping configuration details separate from business logic.
package config
