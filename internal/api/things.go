package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListThings returns all registered Things.
func (s *Server) handleListThings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Bridge.Registry().List())
}

// handleGetThing returns one Thing.
func (s *Server) handleGetThing(w http.ResponseWriter, r *http.Request) {
	thing := s.deps.Bridge.Registry().Get(chi.URLParam(r, "id"))
	if thing == nil {
		writeNotFound(w, "thing not present")
		return
	}
	writeJSON(w, http.StatusOK, thing)
}

// propertyWriteRequest is the body of a property PUT.
type propertyWriteRequest struct {
	Value any `json:"value"`
}

// handleSetThingProperty forwards a property write to the sensor network.
// The registry value changes when the sensor confirms with its own state
// report, not here.
func (s *Server) handleSetThingProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	var req propertyWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.deps.Bridge.SetProperty(r.Context(), id, name, req.Value); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeMsg(w, Msg{Status: http.StatusOK, Message: "property write queued."})
}
