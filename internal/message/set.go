package message

import (
	"fmt"
	"strconv"
)

// SetReqType enumerates the SET/REQ command sub-types: the semantic type of
// a sensor value.
type SetReqType uint8

// Set sub-types.
const (
	VTemp             SetReqType = 0
	VHum              SetReqType = 1
	VStatus           SetReqType = 2
	VPercentage       SetReqType = 3
	VPressure         SetReqType = 4
	VForecast         SetReqType = 5
	VRain             SetReqType = 6
	VRainrate         SetReqType = 7
	VWind             SetReqType = 8
	VGust             SetReqType = 9
	VDirection        SetReqType = 10
	VUv               SetReqType = 11
	VWeight           SetReqType = 12
	VDistance         SetReqType = 13
	VImpedance        SetReqType = 14
	VArmed            SetReqType = 15
	VTripped          SetReqType = 16
	VWatt             SetReqType = 17
	VKwh              SetReqType = 18
	VSceneOn          SetReqType = 19
	VSceneOff         SetReqType = 20
	VHvacFlowState    SetReqType = 21
	VHvacSpeed        SetReqType = 22
	VLightLevel       SetReqType = 23
	VVar1             SetReqType = 24
	VVar2             SetReqType = 25
	VVar3             SetReqType = 26
	VVar4             SetReqType = 27
	VVar5             SetReqType = 28
	VUp               SetReqType = 29
	VDown             SetReqType = 30
	VStop             SetReqType = 31
	VIRSend           SetReqType = 32
	VIRReceive        SetReqType = 33
	VFlow             SetReqType = 34
	VVolume           SetReqType = 35
	VLockStatus       SetReqType = 36
	VLevel            SetReqType = 37
	VVoltage          SetReqType = 38
	VCurrent          SetReqType = 39
	VRgb              SetReqType = 40
	VRgbw             SetReqType = 41
	VId               SetReqType = 42
	VUnitPrefix       SetReqType = 43
	VHvacSetpointCool SetReqType = 44
	VHvacSetpointHeat SetReqType = 45
	VHvacFlowMode     SetReqType = 46
	VText             SetReqType = 47
	VCustom           SetReqType = 48
	VPosition         SetReqType = 49
	VIRRecord         SetReqType = 50
	VPh               SetReqType = 51
	VOrp              SetReqType = 52
	VEc               SetReqType = 53
	VVar              SetReqType = 54
	VVa               SetReqType = 55
	VPowerFactor      SetReqType = 56
)

const maxSetReqType = VPowerFactor

// Valid reports whether the value is inside the closed enumeration.
func (s SetReqType) Valid() bool { return s <= maxSetReqType }

// PropertyName returns the WoT property name a value of this type maps to,
// or "" when the type is not exposed as a property.
func (s SetReqType) PropertyName() string {
	switch s {
	case VTemp, VPercentage:
		return "level"
	case VStatus:
		return "on"
	default:
		return ""
	}
}

// DataType returns the JSON primitive type of the property value:
// "boolean", "number" or "" for unsupported types.
func (s SetReqType) DataType() string {
	switch s {
	case VStatus:
		return "boolean"
	case VTemp, VPercentage:
		return "number"
	default:
		return ""
	}
}

// Description returns the property description shown in the Thing document.
func (s SetReqType) Description() string {
	switch s {
	case VTemp:
		return "Temperature"
	case VStatus:
		return "Whether the thing is on"
	case VPercentage:
		return "The level of the thing from 0-100"
	default:
		return ""
	}
}

// IsSupported reports whether values of this type can be exposed as a WoT
// property (name, data type and description are all defined).
func (s SetReqType) IsSupported() bool {
	return s.PropertyName() != "" && s.DataType() != "" && s.Description() != ""
}

// Value pairs a set type with its wire payload string.
type Value struct {
	Type  SetReqType
	Value string
}

// JSON converts the wire payload to its JSON representation according to
// the type's DataType: "1"/"0" become true/false, decimals become float64.
// Returns false for unsupported types or unconvertible payloads.
func (v Value) JSON() (any, bool) {
	switch v.Type.DataType() {
	case "boolean":
		switch v.Value {
		case "1":
			return true, true
		case "0":
			return false, true
		default:
			return nil, false
		}
	case "number":
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	default:
		return nil, false
	}
}

// ValueFromJSON converts a JSON property value back to its wire payload.
// Returns false when the set type has no data type; values of the wrong
// JSON type render as the empty payload, matching the original behaviour.
func ValueFromJSON(setType SetReqType, value any) (Value, bool) {
	switch setType.DataType() {
	case "boolean":
		if b, ok := value.(bool); ok {
			if b {
				return Value{Type: setType, Value: "1"}, true
			}
			return Value{Type: setType, Value: "0"}, true
		}
		return Value{Type: setType, Value: ""}, true
	case "number":
		if n, ok := value.(float64); ok {
			return Value{Type: setType, Value: strconv.FormatFloat(n, 'f', -1, 64)}, true
		}
		return Value{Type: setType, Value: ""}, true
	default:
		return Value{}, false
	}
}

// SetMessage is a parsed SET frame: a sensor state report (gateway to
// controller) or a state command (controller to gateway). The proxy relays
// these without persistence.
type SetMessage struct {
	NodeID        uint8
	ChildSensorID uint8
	Ack           uint8
	Value         Value
}

func buildSet(nodeID, childSensorID, ack, subType uint8, payload string) (SetMessage, error) {
	if !SetReqType(subType).Valid() {
		return SetMessage{}, ErrInvalidSubType
	}
	return SetMessage{
		NodeID:        nodeID,
		ChildSensorID: childSensorID,
		Ack:           ack,
		Value:         Value{Type: SetReqType(subType), Value: payload},
	}, nil
}

// Command implements Message.
func (m SetMessage) Command() CommandType { return CmdSet }

func (m SetMessage) String() string {
	return fmt.Sprintf("%d;%d;%d;%d;%d;%s\n",
		m.NodeID, m.ChildSensorID, uint8(CmdSet), m.Ack, uint8(m.Value.Type), m.Value.Value)
}
