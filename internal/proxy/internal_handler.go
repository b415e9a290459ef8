package proxy

import (
	"context"
	"strconv"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// InternalHandler services the INTERNAL command family. Two interactions
// are handled locally — node-id allocation and discover-response topology
// updates — and everything else is forwarded to the controller.
type InternalHandler struct {
	in            <-chan message.InternalMessage
	gatewayOut    chan<- string
	controllerOut chan<- string
	nodes         node.Repository
	logger        Logger
}

// NewInternalHandler creates the handler.
func NewInternalHandler(
	in <-chan message.InternalMessage,
	gatewayOut chan<- string,
	controllerOut chan<- string,
	nodes node.Repository,
	logger Logger,
) *InternalHandler {
	return &InternalHandler{
		in:            in,
		gatewayOut:    gatewayOut,
		controllerOut: controllerOut,
		nodes:         nodes,
		logger:        logger,
	}
}

// Run processes internal messages strictly in receive order until ctx is
// cancelled.
func (h *InternalHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.in:
			h.handle(ctx, msg)
		}
	}
}

func (h *InternalHandler) handle(ctx context.Context, msg message.InternalMessage) {
	switch {
	case msg.IsIdRequest():
		h.allocateNodeID(ctx, msg)
	case msg.IsDiscoverResponse():
		h.updateTopology(ctx, msg)
	default:
		select {
		case h.controllerOut <- msg.String():
		case <-ctx.Done():
		}
	}
}

// allocateNodeID picks the least free id in [1,254], persists a default
// node record and answers the broadcast with an IdResponse. When the id
// space is exhausted the request is dropped and the node retries.
func (h *InternalHandler) allocateNodeID(ctx context.Context, msg message.InternalMessage) {
	id, err := h.nodes.NextFreeID(ctx)
	if err != nil {
		h.logger.Error("no free node id, dropping id request", "error", err)
		return
	}

	newNode := node.NewNode(id)
	if err := h.nodes.Create(ctx, &newNode); err != nil {
		h.logger.Error("creating node for id request", "node_id", id, "error", err)
		return
	}

	response := msg
	response.SubType = message.IIdResponse
	response.Payload = strconv.Itoa(int(id))

	h.logger.Info("allocated node id", "node_id", id)
	select {
	case h.gatewayOut <- response.String():
	case <-ctx.Done():
	}
}

// updateTopology records the parent a node reported in its discover
// response.
func (h *InternalHandler) updateTopology(ctx context.Context, msg message.InternalMessage) {
	parentID, err := strconv.ParseUint(msg.Payload, 10, 8)
	if err != nil {
		h.logger.Warn("discover response with bad parent id", "payload", msg.Payload)
		return
	}

	if err := h.nodes.SetParent(ctx, msg.NodeID, uint8(parentID)); err != nil {
		h.logger.Error("updating network topology", "node_id", msg.NodeID, "error", err)
		return
	}
	h.logger.Info("updated network topology", "node_id", msg.NodeID, "parent_node_id", parentID)
}
