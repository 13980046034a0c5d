// Package config provides the application configuration for keylayer.
//
// Application configuration covers how the remapper runs: where the
// bindings file lives, which keyboard to capture, and how to log. The
// bindings themselves live in the settings file handled by package keymap.
//
// # Sources
//
// Sources are applied in order, later sources overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by main)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← KEYLAYER_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/keylayer/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: config file and environment loading (TOML, YAML, KEYLAYER_*)
//   - watcher: change notification for the settings file
package config
