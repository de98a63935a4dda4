// Package file provides file-based implementations of driven port interfaces.
//
// ConfigStore keeps settings in ~/.cohort-tracker/config.toml.
package file
