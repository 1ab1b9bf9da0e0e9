// Package config provides caretkit configuration.
//
// Configuration is resolved in layers, lowest precedence first:
//
//  1. Built-in defaults (Default)
//  2. A configuration file, TOML or YAML by extension
//  3. Environment variables with the CARETKIT_ prefix
//
// Environment variable names map to setting paths the same way for every
// setting: CARETKIT_CARET_BLINK_RATE sets caret.blinkRate and
// CARETKIT_LINE_TOLERANCE sets line.tolerance.
//
// Watch reloads a configuration file whenever it changes on disk.
package config
