// Package config loads and validates the MySController configuration.
//
// The native format is TOML (conf.toml) with three sections: Server,
// Gateway and the optional Controller, plus the Telemetry sink section.
// YAML is accepted for files with a .yaml/.yml extension. Values load in
// three layers: hardcoded defaults, then the file, then environment
// variables with the MYSCONTROLLER_ prefix.
package config
