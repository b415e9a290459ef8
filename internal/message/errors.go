package message

import "errors"

// Parse errors. A frame that fails to parse is not dropped by the proxy;
// the router forwards the raw line to the controller untouched.
var (
	// ErrInvalidMessage indicates the line does not have exactly six
	// ;-separated fields.
	ErrInvalidMessage = errors.New("invalid command message")

	// ErrInvalidNodeID indicates the node-id field is not an 8-bit unsigned
	// decimal integer.
	ErrInvalidNodeID = errors.New("invalid node id")

	// ErrInvalidChildSensorID indicates the child-sensor-id field is not an
	// 8-bit unsigned decimal integer.
	ErrInvalidChildSensorID = errors.New("invalid child sensor id")

	// ErrInvalidCommand indicates the command field is not a known command
	// type (0-4).
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidAck indicates the ack field is not an 8-bit unsigned decimal
	// integer.
	ErrInvalidAck = errors.New("invalid ack")

	// ErrInvalidSubType indicates the type field is outside the enumeration
	// for the frame's command family.
	ErrInvalidSubType = errors.New("invalid sub type")

	// ErrInvalidPayload indicates a STREAM payload that is not valid hex or
	// is shorter than the fixed size of its sub-type.
	ErrInvalidPayload = errors.New("invalid payload")
)
