// Package gateway provides the transport links between the proxy and its
// two peers: the radio gateway and the optional upstream controller.
//
// A Link is a bidirectional line channel over one of four transports:
// serial, TCP client, TCP server or MQTT. All four present the same
// contract — blocking ReadLine/WriteLine of newline-terminated frames —
// so the rest of the proxy never knows which wire it is talking over.
//
// The Supervisor owns a link's lifecycle: it opens the connection with
// retry, fans it out into a reader, a writer and a heartbeat probe, and
// reopens from scratch when the reader dies. Outbound frames queued while
// the link was down are drained and discarded on reconnect; a sensor
// command from minutes ago is worse than no command at all.
package gateway
