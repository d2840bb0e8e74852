// Package config loads the portside configuration from
// ~/.config/portside/config.toml: engine host, log file location, poll
// cadences and cache TTLs. Values are read once at startup and treated as
// fixed for the run.
package config
