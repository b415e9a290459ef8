package node

import "github.com/tsathishkumar/myscontroller-go/internal/message"

// Node id allocation range. 0 is the gateway, 255 the broadcast address.
const (
	MinNodeID uint8 = 1
	MaxNodeID uint8 = 254
)

// Node is one end-device on the radio network.
//
// FirmwareType/FirmwareVersion track what the node last advertised in a
// firmware config request — the contents of its flash. The Desired fields
// are what it should be running, mutated by the user or by the auto-update
// rule on firmware upload.
type Node struct {
	ID                     uint8  `json:"node_id"`
	Name                   string `json:"node_name"`
	FirmwareType           int32  `json:"firmware_type"`
	FirmwareVersion        int32  `json:"firmware_version"`
	DesiredFirmwareType    int32  `json:"desired_firmware_type"`
	DesiredFirmwareVersion int32  `json:"desired_firmware_version"`
	AutoUpdate             bool   `json:"auto_update"`
	Scheduled              bool   `json:"scheduled"`
	ParentNodeID           uint8  `json:"parent_node_id"`
}

// NewNode returns the default record created on id allocation.
func NewNode(id uint8) Node {
	return Node{ID: id, Name: "New Node"}
}

// Sensor is a child sub-device inside a node.
type Sensor struct {
	NodeID        uint8                    `json:"node_id"`
	ChildSensorID uint8                    `json:"child_sensor_id"`
	Type          message.PresentationType `json:"sensor_type"`
	Description   string                   `json:"description"`
}
