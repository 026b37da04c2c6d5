// Package httpserver wraps net/http.Server with graceful shutdown on
// context cancellation or OS signals, start/stop hooks, and env-driven
// configuration.
package httpserver
