// Package config loads harvest-reports settings from defaults, an optional YAML file,
// HARVEST_* environment variables, and command-line flags, in increasing precedence.
package config
