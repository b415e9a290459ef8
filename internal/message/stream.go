package message

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// StreamType enumerates the STREAM command sub-types of the firmware
// over-the-air protocol.
type StreamType uint8

// Stream sub-types.
const (
	StFirmwareConfigRequest  StreamType = 0
	StFirmwareConfigResponse StreamType = 1
	StFirmwareRequest        StreamType = 2
	StFirmwareResponse       StreamType = 3
)

const maxStreamType = StFirmwareResponse

// Fixed sizes of the packed payload structures, in bytes.
const (
	fwConfigRequestSize  = 10
	fwConfigResponseSize = 8
	fwRequestSize        = 6
	fwResponseSize       = 22

	// FirmwareBlockSize is the number of firmware image bytes carried by
	// one FwResponse.
	FirmwareBlockSize = 16
)

// FwConfigRequest advertises the firmware a node is currently running,
// sent by the node's bootloader after reboot.
type FwConfigRequest struct {
	FirmwareType    uint16
	FirmwareVersion uint16
	Blocks          uint16
	CRC             uint16
	BlVersion       uint16
}

// FwConfigResponse tells the node which firmware it should be running.
type FwConfigResponse struct {
	FirmwareType    uint16
	FirmwareVersion uint16
	Blocks          uint16
	CRC             uint16
}

// FwRequest asks for one block of a firmware image.
type FwRequest struct {
	FirmwareType    uint16
	FirmwareVersion uint16
	Block           uint16
}

// FwResponse delivers one 16-byte block of a firmware image.
type FwResponse struct {
	FirmwareType    uint16
	FirmwareVersion uint16
	Block           uint16
	Data            [FirmwareBlockSize]byte
}

// StreamPayload is one of FwConfigRequest, FwConfigResponse, FwRequest or
// FwResponse.
type StreamPayload interface {
	encode() []byte
}

// The payload structures are serialised as the byte-exact little-endian
// concatenation of their fields, with no padding, then upper-case
// hex-encoded into the payload position of the frame. Decoding reads each
// field explicitly rather than overlaying a struct, so the wire layout does
// not depend on the host representation.

func (p FwConfigRequest) encode() []byte {
	buf := make([]byte, fwConfigRequestSize)
	binary.LittleEndian.PutUint16(buf[0:2], p.FirmwareType)
	binary.LittleEndian.PutUint16(buf[2:4], p.FirmwareVersion)
	binary.LittleEndian.PutUint16(buf[4:6], p.Blocks)
	binary.LittleEndian.PutUint16(buf[6:8], p.CRC)
	binary.LittleEndian.PutUint16(buf[8:10], p.BlVersion)
	return buf
}

func (p FwConfigResponse) encode() []byte {
	buf := make([]byte, fwConfigResponseSize)
	binary.LittleEndian.PutUint16(buf[0:2], p.FirmwareType)
	binary.LittleEndian.PutUint16(buf[2:4], p.FirmwareVersion)
	binary.LittleEndian.PutUint16(buf[4:6], p.Blocks)
	binary.LittleEndian.PutUint16(buf[6:8], p.CRC)
	return buf
}

func (p FwRequest) encode() []byte {
	buf := make([]byte, fwRequestSize)
	binary.LittleEndian.PutUint16(buf[0:2], p.FirmwareType)
	binary.LittleEndian.PutUint16(buf[2:4], p.FirmwareVersion)
	binary.LittleEndian.PutUint16(buf[4:6], p.Block)
	return buf
}

func (p FwResponse) encode() []byte {
	buf := make([]byte, fwResponseSize)
	binary.LittleEndian.PutUint16(buf[0:2], p.FirmwareType)
	binary.LittleEndian.PutUint16(buf[2:4], p.FirmwareVersion)
	binary.LittleEndian.PutUint16(buf[4:6], p.Block)
	copy(buf[6:], p.Data[:])
	return buf
}

func decodeFwConfigRequest(data []byte) FwConfigRequest {
	return FwConfigRequest{
		FirmwareType:    binary.LittleEndian.Uint16(data[0:2]),
		FirmwareVersion: binary.LittleEndian.Uint16(data[2:4]),
		Blocks:          binary.LittleEndian.Uint16(data[4:6]),
		CRC:             binary.LittleEndian.Uint16(data[6:8]),
		BlVersion:       binary.LittleEndian.Uint16(data[8:10]),
	}
}

func decodeFwConfigResponse(data []byte) FwConfigResponse {
	return FwConfigResponse{
		FirmwareType:    binary.LittleEndian.Uint16(data[0:2]),
		FirmwareVersion: binary.LittleEndian.Uint16(data[2:4]),
		Blocks:          binary.LittleEndian.Uint16(data[4:6]),
		CRC:             binary.LittleEndian.Uint16(data[6:8]),
	}
}

func decodeFwRequest(data []byte) FwRequest {
	return FwRequest{
		FirmwareType:    binary.LittleEndian.Uint16(data[0:2]),
		FirmwareVersion: binary.LittleEndian.Uint16(data[2:4]),
		Block:           binary.LittleEndian.Uint16(data[4:6]),
	}
}

func decodeFwResponse(data []byte) FwResponse {
	p := FwResponse{
		FirmwareType:    binary.LittleEndian.Uint16(data[0:2]),
		FirmwareVersion: binary.LittleEndian.Uint16(data[2:4]),
		Block:           binary.LittleEndian.Uint16(data[4:6]),
	}
	copy(p.Data[:], data[6:fwResponseSize])
	return p
}

// payloadSize returns the fixed decoded size for a stream sub-type.
func payloadSize(t StreamType) int {
	switch t {
	case StFirmwareConfigRequest:
		return fwConfigRequestSize
	case StFirmwareConfigResponse:
		return fwConfigResponseSize
	case StFirmwareRequest:
		return fwRequestSize
	default:
		return fwResponseSize
	}
}

// StreamMessage is a parsed STREAM frame carrying one of the four firmware
// protocol payloads.
type StreamMessage struct {
	NodeID        uint8
	ChildSensorID uint8
	Ack           uint8
	SubType       StreamType
	Payload       StreamPayload
}

func buildStream(nodeID, childSensorID, ack, subType uint8, payload string) (StreamMessage, error) {
	if subType > uint8(maxStreamType) {
		return StreamMessage{}, ErrInvalidSubType
	}
	t := StreamType(subType)

	data, err := hex.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return StreamMessage{}, ErrInvalidPayload
	}
	if len(data) < payloadSize(t) {
		return StreamMessage{}, ErrInvalidPayload
	}

	var decoded StreamPayload
	switch t {
	case StFirmwareConfigRequest:
		decoded = decodeFwConfigRequest(data)
	case StFirmwareConfigResponse:
		decoded = decodeFwConfigResponse(data)
	case StFirmwareRequest:
		decoded = decodeFwRequest(data)
	default:
		decoded = decodeFwResponse(data)
	}

	return StreamMessage{
		NodeID:        nodeID,
		ChildSensorID: childSensorID,
		Ack:           ack,
		SubType:       t,
		Payload:       decoded,
	}, nil
}

// Command implements Message.
func (m StreamMessage) Command() CommandType { return CmdStream }

func (m StreamMessage) String() string {
	payload := strings.ToUpper(hex.EncodeToString(m.Payload.encode()))
	return fmt.Sprintf("%d;%d;%d;%d;%d;%s\n",
		m.NodeID, m.ChildSensorID, uint8(CmdStream), m.Ack, uint8(m.SubType), payload)
}
