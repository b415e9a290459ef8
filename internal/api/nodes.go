package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// parseNodeID reads a node id path component.
func parseNodeID(r *http.Request, param string) (uint8, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, param), 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// handleListNodes returns all nodes.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.deps.Nodes.List(r.Context())
	if err != nil {
		s.logger.Error("listing nodes", "error", err)
		writeInternalError(w, "listing nodes failed")
		return
	}
	if nodes == nil {
		nodes = []node.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

// handleGetNode returns one node.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(r, "id")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}

	n, err := s.deps.Nodes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			writeNotFound(w, "node not present")
			return
		}
		s.logger.Error("getting node", "node_id", id, "error", err)
		writeInternalError(w, "getting node failed")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// nodeUpdateRequest carries the user-editable node fields.
type nodeUpdateRequest struct {
	Name                   *string `json:"node_name"`
	DesiredFirmwareType    *int32  `json:"desired_firmware_type"`
	DesiredFirmwareVersion *int32  `json:"desired_firmware_version"`
	AutoUpdate             *bool   `json:"auto_update"`
	Scheduled              *bool   `json:"scheduled"`
}

// handleUpdateNode patches a node's name, desired firmware and flags.
func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(r, "id")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}

	var req nodeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	existing, err := s.deps.Nodes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "update failed. node id is not present"})
			return
		}
		s.logger.Error("getting node for update", "node_id", id, "error", err)
		writeInternalError(w, "updating node failed")
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.DesiredFirmwareType != nil {
		existing.DesiredFirmwareType = *req.DesiredFirmwareType
	}
	if req.DesiredFirmwareVersion != nil {
		existing.DesiredFirmwareVersion = *req.DesiredFirmwareVersion
	}
	if req.AutoUpdate != nil {
		existing.AutoUpdate = *req.AutoUpdate
	}
	if req.Scheduled != nil {
		existing.Scheduled = *req.Scheduled
	}

	if err := s.deps.Nodes.Update(r.Context(), existing); err != nil {
		s.logger.Error("updating node", "node_id", id, "error", err)
		writeInternalError(w, "updating node failed")
		return
	}
	writeMsg(w, Msg{Status: http.StatusOK, Message: "update node success."})
}

// handleDeleteNode removes a node and its sensors.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(r, "id")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}

	if err := s.deps.Nodes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, node.ErrNodeNotFound) {
			writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "delete failed. node id is not present"})
			return
		}
		s.logger.Error("deleting node", "node_id", id, "error", err)
		writeInternalError(w, "deleting node failed")
		return
	}
	writeMsg(w, Msg{Status: http.StatusOK, Message: "deleted node."})
}

// handleRebootNode pushes a reboot frame onto the gateway outbound
// channel. A node with OTA bootloader re-requests its firmware config
// after rebooting, which is how a scheduled update actually starts.
func (s *Server) handleRebootNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(r, "id")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}

	select {
	case s.deps.GatewayOut <- message.RebootLine(id):
		writeMsg(w, Msg{Status: http.StatusOK, Message: "reboot requested."})
	case <-r.Context().Done():
		writeInternalError(w, "reboot request not queued")
	}
}
