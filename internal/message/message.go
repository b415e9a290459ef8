package message

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandType identifies the command family of a frame.
type CommandType uint8

// Command families defined by the MySensors serial protocol.
const (
	CmdPresentation CommandType = 0
	CmdSet          CommandType = 1
	CmdReq          CommandType = 2
	CmdInternal     CommandType = 3
	CmdStream       CommandType = 4
)

// String returns the family name for logging.
func (c CommandType) String() string {
	switch c {
	case CmdPresentation:
		return "PRESENTATION"
	case CmdSet:
		return "SET"
	case CmdReq:
		return "REQ"
	case CmdInternal:
		return "INTERNAL"
	case CmdStream:
		return "STREAM"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

// commandTypeFrom maps the raw command byte to a CommandType.
func commandTypeFrom(v uint8) (CommandType, bool) {
	if v > uint8(CmdStream) {
		return 0, false
	}
	return CommandType(v), true
}

// Message is a parsed frame. String renders the exact wire form including
// the trailing newline.
type Message interface {
	fmt.Stringer

	// Command returns the frame's command family.
	Command() CommandType
}

// OtherMessage retains a frame the proxy does not interpret: a REQ frame,
// kept opaque. Sub-types outside a family's enumeration do not produce an
// OtherMessage; they fail to parse. The original line is re-emitted
// verbatim by the router.
type OtherMessage struct {
	Line string
}

// Command returns CmdReq for lack of a better answer; callers routing an
// OtherMessage forward the raw line and never inspect the family.
func (m OtherMessage) Command() CommandType { return CmdReq }

func (m OtherMessage) String() string { return m.Line }

// Parse decodes one wire line into a typed Message.
//
// The line is trimmed, split on ";" and must have exactly six fields. The
// sub-type and payload are interpreted according to the command family:
// PRESENTATION and SET payloads are stored as-is, STREAM payloads are
// hex-decoded into their packed firmware structure, INTERNAL payloads are
// ASCII. REQ frames are retained opaque.
//
// Returns one of PresentationMessage, SetMessage, InternalMessage,
// StreamMessage or OtherMessage, or a parse error from this package.
func Parse(line string) (Message, error) {
	parts := strings.Split(strings.TrimSpace(line), ";")
	if len(parts) != 6 {
		return nil, ErrInvalidMessage
	}

	nodeID, err := parseUint8(parts[0])
	if err != nil {
		return nil, ErrInvalidNodeID
	}
	childSensorID, err := parseUint8(parts[1])
	if err != nil {
		return nil, ErrInvalidChildSensorID
	}
	rawCommand, err := parseUint8(parts[2])
	if err != nil {
		return nil, ErrInvalidCommand
	}
	command, ok := commandTypeFrom(rawCommand)
	if !ok {
		return nil, ErrInvalidCommand
	}
	ack, err := parseUint8(parts[3])
	if err != nil {
		return nil, ErrInvalidAck
	}
	subType, err := parseUint8(parts[4])
	if err != nil {
		return nil, ErrInvalidSubType
	}
	payload := parts[5]

	switch command {
	case CmdStream:
		return buildStream(nodeID, childSensorID, ack, subType, payload)
	case CmdPresentation:
		return buildPresentation(nodeID, childSensorID, ack, subType, payload)
	case CmdSet:
		return buildSet(nodeID, childSensorID, ack, subType, payload)
	case CmdInternal:
		return buildInternal(nodeID, childSensorID, ack, subType, payload)
	default:
		return OtherMessage{Line: line}, nil
	}
}

// Family peeks at the command field of a raw line without a full parse.
// Returns false if the line does not have six fields or the command byte is
// not a known family.
func Family(line string) (CommandType, bool) {
	parts := strings.Split(strings.TrimSpace(line), ";")
	if len(parts) != 6 {
		return 0, false
	}
	v, err := parseUint8(parts[2])
	if err != nil {
		return 0, false
	}
	return commandTypeFrom(v)
}

// parseUint8 parses a decimal 8-bit unsigned field.
func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
