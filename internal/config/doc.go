// Package config resolves server settings: listen port, timeouts, rate limits,
// the saved-list storage backend and the fitter tuning. Values come from
// defaults, then environment variables, then an optional YAML file, then
// command-line flags, each layer overriding the previous one. The result is
// validated before it reaches the application.
package config
