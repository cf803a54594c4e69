// Package config holds blockpad's settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults (Default)
//  2. a TOML or YAML file
//  3. BLOCKPAD_ environment variables
//
// Every setting has a dot-separated path such as "detection.minRelevance".
// File keys use the same names:
//
//	[detection]
//	classifier = "lua"
//	script = "~/.config/blockpad/detect.lua"
//	minRelevance = 0.4
//
// Load validates the result. Watch reloads a file whenever it changes.
package config
