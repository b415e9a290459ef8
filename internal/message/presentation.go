package message

import "fmt"

// PresentationType enumerates the PRESENTATION command sub-types: the kind
// of sensor a node declares for one of its children.
type PresentationType uint8

// Presentation sub-types.
const (
	SDoor                PresentationType = 0
	SMotion              PresentationType = 1
	SSmoke               PresentationType = 2
	SBinary              PresentationType = 3
	SDimmer              PresentationType = 4
	SCover               PresentationType = 5
	STemp                PresentationType = 6
	SHum                 PresentationType = 7
	SBaro                PresentationType = 8
	SWind                PresentationType = 9
	SRain                PresentationType = 10
	SUv                  PresentationType = 11
	SWeight              PresentationType = 12
	SPower               PresentationType = 13
	SHeater              PresentationType = 14
	SDistance            PresentationType = 15
	SLightLevel          PresentationType = 16
	SArduinoNode         PresentationType = 17
	SArduinoRepeaterNode PresentationType = 18
	SLock                PresentationType = 19
	SIr                  PresentationType = 20
	SWater               PresentationType = 21
	SAirQuality          PresentationType = 22
	SCustom              PresentationType = 23
	SDust                PresentationType = 24
	SSceneController     PresentationType = 25
	SRgbLight            PresentationType = 26
	SRgbwLight           PresentationType = 27
	SColorSensor         PresentationType = 28
	SHvac                PresentationType = 29
	SMultimeter          PresentationType = 30
	SSprinkler           PresentationType = 31
	SWaterLeak           PresentationType = 32
	SSound               PresentationType = 33
	SVibration           PresentationType = 34
	SMoisture            PresentationType = 35
	SInfo                PresentationType = 36
	SGas                 PresentationType = 37
	SGps                 PresentationType = 38
	SWaterQuality        PresentationType = 39
)

const maxPresentationType = SWaterQuality

// Valid reports whether the value is inside the closed enumeration.
func (p PresentationType) Valid() bool { return p <= maxPresentationType }

// ThingType returns the Web of Things @type for sensors of this kind, or ""
// when the kind has no WoT mapping yet.
func (p PresentationType) ThingType() string {
	switch p {
	case SBinary:
		return "onOffLight"
	default:
		return ""
	}
}

// ThingDescription returns the human description used when the sensor is
// exposed as a WoT Thing.
func (p PresentationType) ThingDescription() string {
	switch p {
	case SBinary:
		return "A web connected lamp"
	default:
		return ""
	}
}

// SetTypes returns the SET sub-types that become properties of the Thing
// built for a sensor of this kind. Empty for kinds without a WoT mapping.
func (p PresentationType) SetTypes() []SetReqType {
	switch p {
	case SBinary:
		return []SetReqType{VStatus}
	default:
		return nil
	}
}

// PresentationMessage is a parsed PRESENTATION frame: a node declaring one
// of its child sensors. The payload is a free-form description string.
type PresentationMessage struct {
	NodeID        uint8
	ChildSensorID uint8
	Ack           uint8
	SubType       PresentationType
	Payload       string
}

func buildPresentation(nodeID, childSensorID, ack, subType uint8, payload string) (PresentationMessage, error) {
	if !PresentationType(subType).Valid() {
		return PresentationMessage{}, ErrInvalidSubType
	}
	return PresentationMessage{
		NodeID:        nodeID,
		ChildSensorID: childSensorID,
		Ack:           ack,
		SubType:       PresentationType(subType),
		Payload:       payload,
	}, nil
}

// Command implements Message.
func (m PresentationMessage) Command() CommandType { return CmdPresentation }

func (m PresentationMessage) String() string {
	return fmt.Sprintf("%d;%d;%d;%d;%d;%s\n",
		m.NodeID, m.ChildSensorID, uint8(CmdPresentation), m.Ack, uint8(m.SubType), m.Payload)
}
