// Package config loads the library service configuration and builds PostgreSQL connection pools.
//
// Values are resolved in this order, later sources winning: built-in defaults, an optional YAML file,
// variables from a .env file, and the process environment.
package config
