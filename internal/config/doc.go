// Package config loads, normalizes, and validates tunesort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads an optional TOML file, loads a .env file, and honours the
// environment values the sorter has always been driven by: API_KEY,
// ROOT_FOLDER, and ALLOW_FOLDER_CREATION. The Config type centralizes every
// knob the daemon and CLI need so the reconciliation engine receives one
// immutable value built at startup.
//
// Validation failures wrap services.ErrConfiguration and are fatal.
package config
