// Package file provides the TOML-backed configuration store.
// Settings live in config.toml inside the pdfdex config directory and
// are handed to the rest of the application as a typed Config value.
package file
