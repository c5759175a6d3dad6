// Package runtimeconfig loads the daemon's top-level YAML configuration:
// socket paths, the program build directory, the plugin configuration
// path, the default scan tick time, the metrics listen address, and the
// log level. Zero-valued fields are filled with defaults before the
// config is handed to the rest of the daemon.
package runtimeconfig
