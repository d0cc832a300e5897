// Package config loads, normalizes, and validates arianator settings.
//
// Settings come from repository defaults, then an optional TOML file, then
// command-line flags applied by the caller. Asset names that are not absolute
// resolve against the assets directory so the background clip, font, music
// and voice models can be shipped next to the binary.
package config
