// Package app contains the core application logic. It loads the road
// network, wires the navigator with its listener and sensor modules, and
// drives the requested targets one after another, decoupled from any
// specific entrypoint like a CLI or server.
package app
