// Package config loads runtime settings for the CLI client.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional JSON file (-c/-config), environment variables, command-line
// flags.
package config
