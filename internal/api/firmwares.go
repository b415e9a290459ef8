package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
)

// maxUploadSize bounds the multipart form kept in memory; an atmega328
// image is a few tens of kilobytes, so this is generous.
const maxUploadSize = 16 << 20 // 16MB

// handleListFirmwares returns firmware metadata without image data.
func (s *Server) handleListFirmwares(w http.ResponseWriter, r *http.Request) {
	firmwares, err := s.deps.Firmwares.List(r.Context())
	if err != nil {
		s.logger.Error("listing firmwares", "error", err)
		writeInternalError(w, "listing firmwares failed")
		return
	}
	if firmwares == nil {
		firmwares = []firmware.Firmware{}
	}
	writeJSON(w, http.StatusOK, firmwares)
}

// handleUploadForm serves a minimal HTML form for manual firmware
// uploads during commissioning.
func (s *Server) handleUploadForm(w http.ResponseWriter, _ *http.Request) {
	const html = `<html>
	<head><title>Firmware Upload</title></head>
	<body>
		<form action="/firmwares/0/1" method="post" enctype="multipart/form-data">
			Name: <input type="text" name="firmware_name"/><br>
			<input type="file" name="firmware_file"/><br>
			<input type="submit" value="Submit"/>
		</form>
		<p>POST to /firmwares/{type}/{version} with the type and version in the path.</p>
	</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// parseFirmwareKey reads the (type, version) path components.
func parseFirmwareKey(r *http.Request) (int32, int32, string) {
	fwType, err := strconv.ParseInt(chi.URLParam(r, "type"), 10, 32)
	if err != nil {
		return 0, 0, "firmware_type should be a 32-bit integer"
	}
	version, err := strconv.ParseInt(chi.URLParam(r, "version"), 10, 32)
	if err != nil {
		return 0, 0, "firmware_version should be a 32-bit integer"
	}
	return int32(fwType), int32(version), ""
}

// ingestUpload parses the multipart body into a Firmware.
func (s *Server) ingestUpload(r *http.Request, fwType, version int32) (*firmware.Firmware, string) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "Error uploading firmware, invalid multipart form"
	}

	name := r.FormValue("firmware_name")
	if name == "" {
		name = r.URL.Query().Get("firmware_name")
	}
	if name == "" {
		return nil, "firmware name is not present"
	}

	file, _, err := r.FormFile("firmware_file")
	if err != nil {
		return nil, "Error uploading firmware, Missing file"
	}
	defer file.Close()

	fw, err := firmware.ParseHex(fwType, version, name, file)
	if err != nil {
		s.logger.Warn("firmware upload rejected", "type", fwType, "version", version, "error", err)
		return nil, "Error uploading firmware, invalid hex file"
	}
	return &fw, ""
}

// handleCreateFirmware ingests an upload as a new firmware.
func (s *Server) handleCreateFirmware(w http.ResponseWriter, r *http.Request) {
	s.createOrUpdateFirmware(w, r, false)
}

// handleUpdateFirmware ingests an upload over an existing firmware.
func (s *Server) handleUpdateFirmware(w http.ResponseWriter, r *http.Request) {
	s.createOrUpdateFirmware(w, r, true)
}

func (s *Server) createOrUpdateFirmware(w http.ResponseWriter, r *http.Request, update bool) {
	fwType, version, errMsg := parseFirmwareKey(r)
	if errMsg != "" {
		writeBadRequest(w, errMsg)
		return
	}

	fw, errMsg := s.ingestUpload(r, fwType, version)
	if errMsg != "" {
		writeMsg(w, Msg{Status: http.StatusBadRequest, Message: errMsg})
		return
	}

	var scheduled int
	var err error
	if update {
		scheduled, err = s.deps.Firmwares.Update(r.Context(), fw)
	} else {
		scheduled, err = s.deps.Firmwares.Create(r.Context(), fw)
	}

	switch {
	case errors.Is(err, firmware.ErrExists):
		writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "firmware already present."})
	case errors.Is(err, firmware.ErrNotFound):
		writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "update failed. firmware is not present"})
	case err != nil:
		s.logger.Error("storing firmware", "type", fwType, "version", version, "error", err)
		writeInternalError(w, "storing firmware failed")
	default:
		s.logger.Info("firmware stored", "type", fwType, "version", version,
			"blocks", fw.Blocks, "scheduled_nodes", scheduled)
		message := "create firmware success."
		if update {
			message = "update firmware success."
		}
		writeMsg(w, Msg{Status: http.StatusOK, Message: message, ScheduledNodes: &scheduled})
	}
}

// handleDeleteFirmware removes a firmware.
func (s *Server) handleDeleteFirmware(w http.ResponseWriter, r *http.Request) {
	fwType, version, errMsg := parseFirmwareKey(r)
	if errMsg != "" {
		writeBadRequest(w, errMsg)
		return
	}

	if err := s.deps.Firmwares.Delete(r.Context(), fwType, version); err != nil {
		if errors.Is(err, firmware.ErrNotFound) {
			writeMsg(w, Msg{Status: http.StatusBadRequest, Message: "delete failed. firmware is not present"})
			return
		}
		s.logger.Error("deleting firmware", "type", fwType, "version", version, "error", err)
		writeInternalError(w, "deleting firmware failed")
		return
	}
	writeMsg(w, Msg{Status: http.StatusOK, Message: "deleted firmware."})
}
