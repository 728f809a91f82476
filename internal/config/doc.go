// Package config loads, validates, and persists timeturner's TOML
// configuration, and provides the atomically-swapped snapshot handle the
// running daemon reads while a watcher hot-reloads the file underneath it.
package config
