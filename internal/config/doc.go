// Package config loads, normalizes, and validates recall configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as OPENAI_API_KEY and RECALL_API_TOKEN. The
// Config type centralizes every knob the daemon and CLI need so upload,
// frame, and database locations plus external service credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
