// Package server composes the game HTTP server.
//
// It opens the configured campaign store, loads the rules table, wires the
// engine behind the HTTP handlers and runs the listener until the context is
// cancelled, then drains in-flight requests and closes the store.
package server
