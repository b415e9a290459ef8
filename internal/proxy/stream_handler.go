package proxy

import (
	"context"
	"errors"

	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// StreamHandler is the OTA engine's request side: it answers firmware
// config requests with the firmware a node should be running and serves
// the 16-byte code blocks the bootloader asks for.
//
// Block requests are read-only against the firmware store, so any number
// may be in flight. Config requests update the node's reported-firmware
// fields; the store's transactions keep those writes consistent with a
// concurrent upload's auto-update scan.
type StreamHandler struct {
	in         <-chan message.StreamMessage
	gatewayOut chan<- string
	nodes      node.Repository
	firmwares  firmware.Repository
	logger     Logger
}

// NewStreamHandler creates the handler.
func NewStreamHandler(
	in <-chan message.StreamMessage,
	gatewayOut chan<- string,
	nodes node.Repository,
	firmwares firmware.Repository,
	logger Logger,
) *StreamHandler {
	return &StreamHandler{
		in:         in,
		gatewayOut: gatewayOut,
		nodes:      nodes,
		firmwares:  firmwares,
		logger:     logger,
	}
}

// Run processes stream messages until ctx is cancelled. Only the two
// request sub-types are meaningful inbound; response frames echoed back
// by the radio are ignored.
func (h *StreamHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.in:
			switch payload := msg.Payload.(type) {
			case message.FwConfigRequest:
				h.handleConfigRequest(ctx, msg, payload)
			case message.FwRequest:
				h.handleBlockRequest(ctx, msg, payload)
			}
		}
	}
}

// handleConfigRequest records what the node is running and answers with
// what it should be running.
func (h *StreamHandler) handleConfigRequest(ctx context.Context, msg message.StreamMessage, req message.FwConfigRequest) {
	h.logger.Info("firmware config requested",
		"node_id", msg.NodeID, "type", req.FirmwareType, "version", req.FirmwareVersion)

	n, err := h.nodes.Get(ctx, msg.NodeID)
	if err != nil {
		if !errors.Is(err, node.ErrNodeNotFound) {
			h.logger.Error("looking up node for config request", "node_id", msg.NodeID, "error", err)
		}
		return
	}

	// The advertised values are the node's actual flash contents; record
	// them so the registry reflects reality even if the response is lost.
	err = h.nodes.UpdateReportedFirmware(ctx, msg.NodeID,
		int32(req.FirmwareType), int32(req.FirmwareVersion))
	if err != nil {
		h.logger.Error("updating reported firmware", "node_id", msg.NodeID, "error", err)
	}

	fw, err := h.firmwares.Get(ctx, n.DesiredFirmwareType, n.DesiredFirmwareVersion)
	if err != nil {
		h.logger.Warn("no firmware found",
			"type", n.DesiredFirmwareType, "version", n.DesiredFirmwareVersion)
		return
	}

	response := message.StreamMessage{
		NodeID:        msg.NodeID,
		ChildSensorID: msg.ChildSensorID,
		Ack:           msg.Ack,
		SubType:       message.StFirmwareConfigResponse,
		Payload: message.FwConfigResponse{
			FirmwareType:    uint16(fw.Type),
			FirmwareVersion: uint16(fw.Version),
			Blocks:          uint16(fw.Blocks),
			CRC:             uint16(fw.CRC),
		},
	}
	select {
	case h.gatewayOut <- response.String():
	case <-ctx.Done():
	}
}

// handleBlockRequest serves one block of a stored firmware image.
func (h *StreamHandler) handleBlockRequest(ctx context.Context, msg message.StreamMessage, req message.FwRequest) {
	fw, err := h.firmwares.Get(ctx, int32(req.FirmwareType), int32(req.FirmwareVersion))
	if err != nil {
		h.logger.Warn("no firmware found for block request",
			"type", req.FirmwareType, "version", req.FirmwareVersion, "block", req.Block)
		return
	}

	response := message.StreamMessage{
		NodeID:        msg.NodeID,
		ChildSensorID: msg.ChildSensorID,
		Ack:           msg.Ack,
		SubType:       message.StFirmwareResponse,
		Payload: message.FwResponse{
			FirmwareType:    req.FirmwareType,
			FirmwareVersion: req.FirmwareVersion,
			Block:           req.Block,
			Data:            fw.GetBlock(req.Block),
		},
	}
	select {
	case h.gatewayOut <- response.String():
	case <-ctx.Done():
	}
}
