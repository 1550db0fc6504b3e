// Package file loads the replicator configuration from a TOML file and
// watches it for changes.
//
// The file is decoded strictly: unknown keys are rejected so that typos
// surface at load time instead of silently falling back to defaults.
// Decoded values are checked with go-playground/validator struct tags.
package file
