package gateway

import "errors"

var (
	// ErrLinkEOF indicates the peer closed the stream. A read of a single
	// 0x00 byte is also mapped here: the original MySensors gateways emit
	// one NUL when tearing down, and treating it as EOF is what triggers
	// the reconnect. See the package note on Open for the caveat.
	ErrLinkEOF = errors.New("link reached EOF")

	// ErrLinkClosed indicates an operation on a link after Close.
	ErrLinkClosed = errors.New("link closed")

	// ErrNotConnected indicates an MQTT operation while the broker session
	// is down.
	ErrNotConnected = errors.New("not connected to broker")
)
