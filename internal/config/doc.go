// Package config loads the murl configuration file. Configuration lives at
// ~/.config/murl/config.yaml; a missing file is not an error and yields the
// defaults, a malformed file is.
package config
