// Package app wires application dependencies for consumers of the client.
//
// It builds the concrete store, transport and high-level services from
// Config, exposing them via the Wire struct. The session and cache inside a
// Wire are the shared state every service reads through; construct one Wire
// per client instance.
package app
