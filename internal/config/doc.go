// Package config loads runtime settings for the Kapture CLI.
//
// Values are resolved in three stages, later stages overriding earlier
// ones: built-in defaults, an optional JSON file (-c / -config), and
// command-line flags.
package config
