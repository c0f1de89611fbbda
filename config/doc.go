// Package config loads and validates convertd configuration.
//
// Configuration comes from three layers, later layers overriding earlier
// ones: built-in defaults, an optional YAML or JSON config file, and
// CONVERTD_* environment variables. The merged result is validated once
// at startup; there is no runtime reloading.
package config
