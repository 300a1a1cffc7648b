// Package config provides configuration types for the debugger SDK.
//
// Options is the programmatic configuration populated by the root package's
// functional options. File is the on-disk configuration used by the jsdebug
// command, loaded from YAML or TOML by LoadFile.
package config
