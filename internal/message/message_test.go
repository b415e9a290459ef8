package message

import (
	"errors"
	"testing"
)

func TestParse_FieldErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"too few fields", "1;2;3\n", ErrInvalidMessage},
		{"too many fields", "1;2;3;0;2;1;extra\n", ErrInvalidMessage},
		{"node id not a number", "xx;255;3;0;3;0\n", ErrInvalidNodeID},
		{"node id overflows u8", "256;255;3;0;3;0\n", ErrInvalidNodeID},
		{"child id not a number", "1;yy;3;0;3;0\n", ErrInvalidChildSensorID},
		{"command not a number", "1;255;zz;0;3;0\n", ErrInvalidCommand},
		{"command out of range", "1;255;5;0;3;0\n", ErrInvalidCommand},
		{"ack not a number", "1;255;3;x;3;0\n", ErrInvalidAck},
		{"sub type not a number", "1;255;3;0;x;0\n", ErrInvalidSubType},
		{"presentation sub type out of range", "1;0;0;0;40;desc\n", ErrInvalidSubType},
		{"set sub type out of range", "1;0;1;0;57;1\n", ErrInvalidSubType},
		{"internal sub type out of range", "1;255;3;0;29;0\n", ErrInvalidSubType},
		{"stream sub type out of range", "1;255;4;0;4;00\n", ErrInvalidSubType},
		{"stream payload not hex", "1;255;4;0;2;zz\n", ErrInvalidPayload},
		{"stream payload too short", "1;255;4;0;0;0A00\n", ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.line, err, tt.want)
			}
		})
	}
}

func TestParse_Presentation(t *testing.T) {
	msg, err := Parse("12;6;0;0;3;Relay\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, ok := msg.(PresentationMessage)
	if !ok {
		t.Fatalf("Parse() = %T, want PresentationMessage", msg)
	}
	if p.NodeID != 12 || p.ChildSensorID != 6 || p.SubType != SBinary || p.Payload != "Relay" {
		t.Errorf("unexpected message %+v", p)
	}
}

func TestParse_Set(t *testing.T) {
	msg, err := Parse("2;1;1;0;2;1\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	s, ok := msg.(SetMessage)
	if !ok {
		t.Fatalf("Parse() = %T, want SetMessage", msg)
	}
	if s.NodeID != 2 || s.ChildSensorID != 1 || s.Value.Type != VStatus || s.Value.Value != "1" {
		t.Errorf("unexpected message %+v", s)
	}
}

func TestParse_Internal(t *testing.T) {
	msg, err := Parse("255;255;3;0;3;0\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	i, ok := msg.(InternalMessage)
	if !ok {
		t.Fatalf("Parse() = %T, want InternalMessage", msg)
	}
	if !i.IsIdRequest() {
		t.Errorf("IsIdRequest() = false for %+v", i)
	}
}

func TestParse_ReqIsRetainedOpaque(t *testing.T) {
	line := "7;3;2;0;2;\n"
	msg, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	o, ok := msg.(OtherMessage)
	if !ok {
		t.Fatalf("Parse() = %T, want OtherMessage", msg)
	}
	if o.Line != line {
		t.Errorf("OtherMessage.Line = %q, want %q", o.Line, line)
	}
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"1;255;4;0;0;0A0001005000D4460102\n",
		"1;255;4;0;1;0A0002005000D446\n",
		"1;255;4;0;2;0A0002004F00\n",
		"1;255;4;0;3;0A0001004F00FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF\n",
		"1;255;4;0;3;0A0002004F0000000000000000000000000000000000\n",
		"12;6;0;0;3;Relay\n",
		"2;1;1;0;2;1\n",
		"1;0;1;0;0;21.5\n",
		"255;255;3;0;3;0\n",
		"1;255;3;0;13;0\n",
		"0;255;3;0;2;\n",
	}

	for _, line := range lines {
		msg, err := Parse(line)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", line, err)
			continue
		}
		if got := msg.String(); got != line {
			t.Errorf("render(parse(%q)) = %q", line, got)
		}
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		line   string
		want   CommandType
		wantOK bool
	}{
		{"1;255;4;0;0;0A\n", CmdStream, true},
		{"1;0;1;0;2;1\n", CmdSet, true},
		{"255;255;3;0;3;0\n", CmdInternal, true},
		{"garbage", 0, false},
		{"1;2;9;0;0;x\n", 0, false},
	}

	for _, tt := range tests {
		got, ok := Family(tt.line)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Family(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHeartbeatAndRebootLiterals(t *testing.T) {
	if Heartbeat != "0;255;3;0;2;\n" {
		t.Errorf("Heartbeat = %q", Heartbeat)
	}
	if got := RebootLine(9); got != "9;255;3;0;13;0\n" {
		t.Errorf("RebootLine(9) = %q", got)
	}
}
