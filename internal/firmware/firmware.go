package firmware

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
)

// pageSize is the flash page size of the atmega328 targets the bootloader
// writes to. Image data is padded with 0xFF to a whole number of pages.
const pageSize = 128

// Firmware is one stored image.
//
// Invariants, established at ingest time and relied on by the OTA engine:
//   - len(Data) is a multiple of 128
//   - Blocks == len(Data) / 16
//   - CRC == ComputeCRC(Data)
type Firmware struct {
	Type    int32  `json:"firmware_type"`
	Version int32  `json:"firmware_version"`
	Name    string `json:"name"`
	Blocks  int32  `json:"blocks"`
	CRC     int32  `json:"crc"`
	Data    []byte `json:"-"`
}

// New builds a Firmware from already page-padded data, computing the block
// count and CRC.
func New(fwType, version int32, name string, data []byte) Firmware {
	return Firmware{
		Type:    fwType,
		Version: version,
		Name:    name,
		Blocks:  int32(len(data) / message.FirmwareBlockSize),
		CRC:     int32(ComputeCRC(data)),
		Data:    data,
	}
}

// GetBlock returns the 16-byte block at offset n*16. A block outside the
// image returns 16 zero bytes — the bootloader never requests past the
// advertised block count, so this only serves malformed requests.
func (f Firmware) GetBlock(n uint16) [message.FirmwareBlockSize]byte {
	var block [message.FirmwareBlockSize]byte
	start := int(n) * message.FirmwareBlockSize
	if start > len(f.Data) {
		return block
	}
	end := start + message.FirmwareBlockSize
	if end > len(f.Data) {
		end = len(f.Data)
	}
	copy(block[:], f.Data[start:end])
	return block
}

// ComputeCRC returns the MODBUS CRC-16 of data: reflected polynomial
// 0xA001, initial value 0xFFFF, no final xor.
func ComputeCRC(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for range 8 {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// ParseHex ingests a newline-delimited Intel HEX document and builds a
// Firmware. Only Data records contribute image bytes; EOF and the extended
// address record types are skipped. The concatenated data is padded with
// 0xFF until its length is a multiple of the 128-byte page size.
//
// The record checksum is verified; a corrupt record fails the whole ingest
// with ErrInvalidHex.
func ParseHex(fwType, version int32, name string, r io.Reader) (Firmware, error) {
	var data []byte

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, err := parseRecord(line)
		if err != nil {
			return Firmware{}, err
		}
		data = append(data, record...)
	}
	if err := scanner.Err(); err != nil {
		return Firmware{}, fmt.Errorf("reading hex file: %w", err)
	}

	if pad := len(data) % pageSize; pad != 0 {
		for range pageSize - pad {
			data = append(data, 0xFF)
		}
	}

	return New(fwType, version, name, data), nil
}

// parseRecord decodes one Intel HEX record line and returns its data bytes,
// or nil for non-Data record types.
//
// Record layout after the leading colon, hex-encoded:
//
//	count(1) address(2) type(1) data(count) checksum(1)
func parseRecord(line string) ([]byte, error) {
	if !strings.HasPrefix(line, ":") {
		return nil, fmt.Errorf("%w: record %q has no start code", ErrInvalidHex, line)
	}
	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: record %q is not hex", ErrInvalidHex, line)
	}
	if len(raw) < 5 {
		return nil, fmt.Errorf("%w: record %q too short", ErrInvalidHex, line)
	}

	count := int(raw[0])
	if len(raw) != 5+count {
		return nil, fmt.Errorf("%w: record %q length mismatch", ErrInvalidHex, line)
	}

	var sum byte
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: record %q checksum mismatch", ErrInvalidHex, line)
	}

	const recordTypeData = 0x00
	if raw[3] != recordTypeData {
		return nil, nil
	}
	return raw[4 : 4+count], nil
}
