// Package wot exposes sensors as Web of Things resources.
//
// Each supported sensor becomes a Thing with typed properties derived from
// its presentation type: a binary sensor becomes an onOffLight with an
// "on" property, and so on. The bridge listens to the proxy's new-sensor
// and property-notify channels to keep the registry current, fans property
// changes out to subscribers (the API's websocket endpoint), and converts
// property writes back into SET frames injected toward the gateway.
//
// The registry is shared between the bridge goroutine and the HTTP server
// pool and is guarded by a read/write lock.
package wot
