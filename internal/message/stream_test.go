package message

import "testing"

func TestParse_FwConfigRequest(t *testing.T) {
	msg, err := Parse("1;255;4;0;0;0A0001005000D4460102\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sm, ok := msg.(StreamMessage)
	if !ok {
		t.Fatalf("Parse() = %T, want StreamMessage", msg)
	}
	if sm.SubType != StFirmwareConfigRequest {
		t.Fatalf("SubType = %v, want StFirmwareConfigRequest", sm.SubType)
	}
	p, ok := sm.Payload.(FwConfigRequest)
	if !ok {
		t.Fatalf("Payload = %T, want FwConfigRequest", sm.Payload)
	}
	want := FwConfigRequest{FirmwareType: 10, FirmwareVersion: 1, Blocks: 80, CRC: 18132, BlVersion: 513}
	if p != want {
		t.Errorf("payload = %+v, want %+v", p, want)
	}
}

func TestParse_FwConfigResponse(t *testing.T) {
	msg, err := Parse("1;255;4;0;1;0A0002005000D446\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sm := msg.(StreamMessage)
	p, ok := sm.Payload.(FwConfigResponse)
	if !ok {
		t.Fatalf("Payload = %T, want FwConfigResponse", sm.Payload)
	}
	want := FwConfigResponse{FirmwareType: 10, FirmwareVersion: 2, Blocks: 80, CRC: 18132}
	if p != want {
		t.Errorf("payload = %+v, want %+v", p, want)
	}
}

func TestParse_FwRequest(t *testing.T) {
	msg, err := Parse("1;255;4;0;2;0A0002004F00\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sm := msg.(StreamMessage)
	p, ok := sm.Payload.(FwRequest)
	if !ok {
		t.Fatalf("Payload = %T, want FwRequest", sm.Payload)
	}
	want := FwRequest{FirmwareType: 10, FirmwareVersion: 2, Block: 79}
	if p != want {
		t.Errorf("payload = %+v, want %+v", p, want)
	}
}

func TestParse_FwResponse(t *testing.T) {
	msg, err := Parse("1;255;4;0;3;0A0001004F00FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sm := msg.(StreamMessage)
	p, ok := sm.Payload.(FwResponse)
	if !ok {
		t.Fatalf("Payload = %T, want FwResponse", sm.Payload)
	}
	if p.FirmwareType != 10 || p.FirmwareVersion != 1 || p.Block != 79 {
		t.Errorf("payload header = %+v", p)
	}
	for i, b := range p.Data {
		if b != 0xFF {
			t.Errorf("Data[%d] = %#x, want 0xFF", i, b)
		}
	}
}

func TestParse_StreamToleratesTrailingWhitespace(t *testing.T) {
	// Gateways occasionally append whitespace after the payload.
	if _, err := Parse("1;255;4;0;2;0A0002004F00\n "); err != nil {
		t.Errorf("Parse() error = %v", err)
	}
}

func TestStreamMessage_RenderResponse(t *testing.T) {
	// Constructing a config response from firmware attributes must render
	// the byte-exact little-endian hex payload.
	msg := StreamMessage{
		NodeID:        1,
		ChildSensorID: 255,
		Ack:           0,
		SubType:       StFirmwareConfigResponse,
		Payload:       FwConfigResponse{FirmwareType: 10, FirmwareVersion: 2, Blocks: 79, CRC: 1000},
	}
	if got, want := msg.String(), "1;255;4;0;1;0A0002004F00E803\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStreamMessage_RenderBlockResponse(t *testing.T) {
	var data [FirmwareBlockSize]byte
	copy(data[:], []byte{0, 3, 4, 7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 4})
	msg := StreamMessage{
		NodeID:        1,
		ChildSensorID: 255,
		SubType:       StFirmwareResponse,
		Payload:       FwResponse{FirmwareType: 10, FirmwareVersion: 2, Block: 7, Data: data},
	}
	if got, want := msg.String(), "1;255;4;0;3;0A000200070000030407000000000000000000010204\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
