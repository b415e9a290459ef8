package message

import "testing"

func TestSetReqType_Supported(t *testing.T) {
	for _, s := range []SetReqType{VTemp, VStatus, VPercentage} {
		if !s.IsSupported() {
			t.Errorf("%v.IsSupported() = false", s)
		}
	}
	if VRgb.IsSupported() {
		t.Error("VRgb.IsSupported() = true, want false")
	}
}

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   any
		wantOK bool
	}{
		{"status on", Value{Type: VStatus, Value: "1"}, true, true},
		{"status off", Value{Type: VStatus, Value: "0"}, false, true},
		{"status garbage", Value{Type: VStatus, Value: "yes"}, nil, false},
		{"temperature", Value{Type: VTemp, Value: "21.5"}, 21.5, true},
		{"percentage", Value{Type: VPercentage, Value: "75"}, 75.0, true},
		{"number garbage", Value{Type: VTemp, Value: "warm"}, nil, false},
		{"unsupported type", Value{Type: VRgb, Value: "FFFFFF"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.JSON()
			if ok != tt.wantOK {
				t.Fatalf("JSON() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("JSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueFromJSON(t *testing.T) {
	v, ok := ValueFromJSON(VStatus, true)
	if !ok || v.Value != "1" {
		t.Errorf("ValueFromJSON(VStatus, true) = %+v, %v", v, ok)
	}
	v, ok = ValueFromJSON(VStatus, false)
	if !ok || v.Value != "0" {
		t.Errorf("ValueFromJSON(VStatus, false) = %+v, %v", v, ok)
	}
	v, ok = ValueFromJSON(VPercentage, 42.0)
	if !ok || v.Value != "42" {
		t.Errorf("ValueFromJSON(VPercentage, 42) = %+v, %v", v, ok)
	}
	if _, ok = ValueFromJSON(VRgb, "FFFFFF"); ok {
		t.Error("ValueFromJSON(VRgb) ok = true, want false")
	}
	// Wrong JSON type renders as an empty payload rather than failing.
	v, ok = ValueFromJSON(VStatus, "not a bool")
	if !ok || v.Value != "" {
		t.Errorf("ValueFromJSON(VStatus, string) = %+v, %v", v, ok)
	}
}

func TestSetMessage_String(t *testing.T) {
	msg := SetMessage{
		NodeID:        1,
		ChildSensorID: 2,
		Ack:           0,
		Value:         Value{Type: VStatus, Value: "1"},
	}
	if got, want := msg.String(), "1;2;1;0;2;1\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
