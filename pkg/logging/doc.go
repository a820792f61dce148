// Package logging provides structured logging for murl built on Go's
// standard slog package.
//
// All log entries carry a subsystem identifier for categorization and go to
// stderr, keeping stdout reserved for request results so murl can be piped
// into jq and friends.
//
// # Usage
//
//	import "github.com/turlockmike/murl/pkg/logging"
//
//	logging.Init(logging.LevelDebug, os.Stderr)
//
//	logging.Info("OAuth", "Discovering authorization server metadata")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Error("Store", err, "Failed to persist credential")
//
// Access and refresh token values are never logged by any subsystem; only
// server URLs and endpoint URLs appear in log output.
package logging
