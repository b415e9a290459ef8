package proxy

import (
	"context"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
)

// Recorder receives a copy of every state report for telemetry. It is
// optional; a nil recorder disables recording. Implementations must not
// block.
type Recorder interface {
	RecordSet(msg message.SetMessage)
}

// SetHandler relays SET traffic in both directions without persistence.
//
// Gateway-to-controller: a sensor state report is forwarded upstream,
// published on the property-notify channel for the WoT bridge and handed
// to the telemetry recorder. The consumers are independent; no ordering
// is promised between them.
//
// Controller-to-gateway: a property write coming back from the WoT bridge
// is rendered onto the gateway outbound channel.
type SetHandler struct {
	fromGateway    <-chan message.SetMessage
	fromWoT        <-chan message.SetMessage
	gatewayOut     chan<- string
	controllerOut  chan<- string
	propertyNotify chan<- message.SetMessage
	recorder       Recorder
	logger         Logger
}

// NewSetHandler creates the handler pair. recorder may be nil.
func NewSetHandler(
	fromGateway <-chan message.SetMessage,
	fromWoT <-chan message.SetMessage,
	gatewayOut chan<- string,
	controllerOut chan<- string,
	propertyNotify chan<- message.SetMessage,
	recorder Recorder,
	logger Logger,
) *SetHandler {
	return &SetHandler{
		fromGateway:    fromGateway,
		fromWoT:        fromWoT,
		gatewayOut:     gatewayOut,
		controllerOut:  controllerOut,
		propertyNotify: propertyNotify,
		recorder:       recorder,
		logger:         logger,
	}
}

// RunFromGateway relays sensor state reports until ctx is cancelled.
func (h *SetHandler) RunFromGateway(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.fromGateway:
			if h.recorder != nil {
				h.recorder.RecordSet(msg)
			}
			select {
			case h.controllerOut <- msg.String():
			case <-ctx.Done():
				return
			}
			select {
			case h.propertyNotify <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// RunFromWoT relays property writes to the gateway until ctx is cancelled.
func (h *SetHandler) RunFromWoT(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.fromWoT:
			h.logger.Debug("property write", "node_id", msg.NodeID,
				"child_sensor_id", msg.ChildSensorID, "value", msg.Value.Value)
			select {
			case h.gatewayOut <- msg.String():
			case <-ctx.Done():
				return
			}
		}
	}
}
