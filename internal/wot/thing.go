package wot

import (
	"fmt"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// Property is one typed property of a Thing.
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON primitive: boolean, number
	Description string `json:"description"`
	Value       any    `json:"value"`

	// setType is the SET sub-type a write to this property renders as.
	setType message.SetReqType
}

// Thing is the WoT representation of one sensor.
type Thing struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	AtType        string               `json:"@type,omitempty"`
	Description   string               `json:"description,omitempty"`
	NodeID        uint8                `json:"node_id"`
	ChildSensorID uint8                `json:"child_sensor_id"`
	Properties    map[string]*Property `json:"properties"`
}

// ThingID derives the registry key for a sensor.
func ThingID(nodeID, childSensorID uint8) string {
	return fmt.Sprintf("%d-%d", nodeID, childSensorID)
}

// BuildThing constructs the Thing for a sensor, or nil when the sensor's
// presentation type has no WoT mapping yet.
func BuildThing(nodeName string, sensor node.Sensor) *Thing {
	setTypes := sensor.Type.SetTypes()
	if len(setTypes) == 0 {
		return nil
	}

	title := nodeName
	if sensor.Description != "" {
		title = fmt.Sprintf("%s - %s", nodeName, sensor.Description)
	}

	thing := &Thing{
		ID:            ThingID(sensor.NodeID, sensor.ChildSensorID),
		Title:         title,
		AtType:        sensor.Type.ThingType(),
		Description:   sensor.Type.ThingDescription(),
		NodeID:        sensor.NodeID,
		ChildSensorID: sensor.ChildSensorID,
		Properties:    make(map[string]*Property, len(setTypes)),
	}

	for _, setType := range setTypes {
		if !setType.IsSupported() {
			continue
		}
		thing.Properties[setType.PropertyName()] = &Property{
			Name:        setType.PropertyName(),
			Type:        setType.DataType(),
			Description: setType.Description(),
			setType:     setType,
		}
	}
	return thing
}
