package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/nodes", s.handleListNodes)
	r.Get("/nodes/{id}", s.handleGetNode)
	r.Get("/sensors", s.handleListSensors)
	r.Get("/sensors/{node}/{child}", s.handleGetSensor)
	r.Get("/firmwares", s.handleListFirmwares)
	r.Get("/firmwares/upload", s.handleUploadForm)

	r.Get("/things", s.handleListThings)
	r.Get("/things/{id}", s.handleGetThing)
	r.Get("/things/ws", s.handleThingsWebsocket)

	// Mutating endpoints, behind the bearer token when one is configured.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Put("/nodes/{id}", s.handleUpdateNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Post("/nodes/{id}/reboot", s.handleRebootNode)

		r.Delete("/sensors/{node}/{child}", s.handleDeleteSensor)

		r.Post("/firmwares/{type}/{version}", s.handleCreateFirmware)
		r.Put("/firmwares/{type}/{version}", s.handleUpdateFirmware)
		r.Delete("/firmwares/{type}/{version}", s.handleDeleteFirmware)

		r.Put("/things/{id}/properties/{name}", s.handleSetThingProperty)
	})

	return r
}
