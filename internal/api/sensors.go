package api

import (
	"errors"
	"net/http"

	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// handleListSensors returns all sensors.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := s.deps.Sensors.List(r.Context())
	if err != nil {
		s.logger.Error("listing sensors", "error", err)
		writeInternalError(w, "listing sensors failed")
		return
	}
	if sensors == nil {
		sensors = []node.Sensor{}
	}
	writeJSON(w, http.StatusOK, sensors)
}

// handleGetSensor returns one sensor by its composite key.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := parseNodeID(r, "node")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}
	childID, ok := parseNodeID(r, "child")
	if !ok {
		writeBadRequest(w, "child sensor id should be a number with max value of 255")
		return
	}

	sensor, err := s.deps.Sensors.Get(r.Context(), nodeID, childID)
	if err != nil {
		if errors.Is(err, node.ErrSensorNotFound) {
			writeBadRequest(w, "Sensor not present")
			return
		}
		s.logger.Error("getting sensor", "node_id", nodeID, "child_sensor_id", childID, "error", err)
		writeInternalError(w, "getting sensor failed")
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// handleDeleteSensor removes one sensor.
func (s *Server) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := parseNodeID(r, "node")
	if !ok {
		writeBadRequest(w, "node id should be a number with max value of 255")
		return
	}
	childID, ok := parseNodeID(r, "child")
	if !ok {
		writeBadRequest(w, "child sensor id should be a number with max value of 255")
		return
	}

	if err := s.deps.Sensors.Delete(r.Context(), nodeID, childID); err != nil {
		if errors.Is(err, node.ErrSensorNotFound) {
			writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "delete failed. sensor is not present"})
			return
		}
		s.logger.Error("deleting sensor", "node_id", nodeID, "child_sensor_id", childID, "error", err)
		writeInternalError(w, "deleting sensor failed")
		return
	}
	writeMsg(w, Msg{Status: http.StatusOK, Message: "deleted sensor."})
}
