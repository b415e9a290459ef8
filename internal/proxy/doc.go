// Package proxy wires the MySensors message pipeline: the interceptor that
// demultiplexes gateway traffic to the per-family handlers, the handlers
// themselves, and the channel graph connecting them to the two transport
// supervisors.
//
// The proxy sits between the gateway and an optional upstream controller.
// It services a small set of node-originated interactions locally — node-id
// allocation, sensor presentation indexing, firmware configuration and
// block delivery — and forwards everything else verbatim. Lines that fail
// to parse are passed through to the controller untouched; the proxy never
// swallows traffic it does not understand.
package proxy
