package proxy

import (
	"context"
	"errors"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// NewSensorEvent announces a sensor first seen in a presentation, so the
// WoT bridge can build a Thing for it.
type NewSensorEvent struct {
	NodeName string
	Sensor   node.Sensor
}

// PresentationHandler indexes the sensors nodes declare about themselves.
// Presentations for unknown nodes are not indexed (they are still
// forwarded to the controller): a sensor with no parent node would be
// unreachable anyway, and the node will re-present after it obtains an id.
type PresentationHandler struct {
	in            <-chan message.PresentationMessage
	controllerOut chan<- string
	newSensors    chan<- NewSensorEvent
	nodes         node.Repository
	sensors       node.SensorRepository
	logger        Logger
}

// NewPresentationHandler creates the handler.
func NewPresentationHandler(
	in <-chan message.PresentationMessage,
	controllerOut chan<- string,
	newSensors chan<- NewSensorEvent,
	nodes node.Repository,
	sensors node.SensorRepository,
	logger Logger,
) *PresentationHandler {
	return &PresentationHandler{
		in:            in,
		controllerOut: controllerOut,
		newSensors:    newSensors,
		nodes:         nodes,
		sensors:       sensors,
		logger:        logger,
	}
}

// Run processes presentations until ctx is cancelled. Every presentation,
// handled or not, is forwarded verbatim to the controller.
func (h *PresentationHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.in:
			h.handle(ctx, msg)
			select {
			case h.controllerOut <- msg.String():
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *PresentationHandler) handle(ctx context.Context, msg message.PresentationMessage) {
	parent, err := h.nodes.Get(ctx, msg.NodeID)
	if err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			h.logger.Warn("presentation for unknown node, dropping",
				"node_id", msg.NodeID, "child_sensor_id", msg.ChildSensorID)
		} else {
			h.logger.Error("looking up node for presentation", "node_id", msg.NodeID, "error", err)
		}
		return
	}

	sensor := node.Sensor{
		NodeID:        msg.NodeID,
		ChildSensorID: msg.ChildSensorID,
		Type:          msg.SubType,
		Description:   msg.Payload,
	}

	outcome, err := h.sensors.Upsert(ctx, &sensor)
	if err != nil {
		h.logger.Error("storing sensor", "node_id", msg.NodeID,
			"child_sensor_id", msg.ChildSensorID, "error", err)
		return
	}

	switch outcome {
	case node.UpsertCreated:
		h.logger.Info("created sensor", "node_id", sensor.NodeID,
			"child_sensor_id", sensor.ChildSensorID, "type", uint8(sensor.Type))
		select {
		case h.newSensors <- NewSensorEvent{NodeName: parent.Name, Sensor: sensor}:
		case <-ctx.Done():
		}
	case node.UpsertUpdated:
		h.logger.Info("updated sensor", "node_id", sensor.NodeID,
			"child_sensor_id", sensor.ChildSensorID, "type", uint8(sensor.Type))
	case node.UpsertUnchanged:
		// Re-presentation of a known sensor; nothing to do.
	}
}
