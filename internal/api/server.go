package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
	"github.com/tsathishkumar/myscontroller-go/internal/wot"
)

// gracefulShutdownTimeout is the maximum wait for in-flight requests
// during Close.
const gracefulShutdownTimeout = 10 * time.Second

// Logger is the minimal logging interface the server needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// HealthChecker reports whether a dependency is usable; *database.DB
// satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Listen     string // host:port to bind
	JWTSecret  string // empty disables auth on mutating endpoints
	Logger     Logger
	Nodes      node.Repository
	Sensors    node.SensorRepository
	Firmwares  firmware.Repository
	Bridge     *wot.Bridge
	GatewayOut chan<- string // reboot frames are pushed here
	DB         HealthChecker
	Version    string
}

// Server is the HTTP server for the proxy's REST and WoT surface.
type Server struct {
	deps      Deps
	logger    Logger
	jwtSecret []byte
	server    *http.Server
	startTime time.Time
}

// New creates the server; nothing listens until Start.
func New(deps Deps) *Server {
	s := &Server{
		deps:      deps,
		logger:    deps.Logger,
		jwtSecret: []byte(deps.JWTSecret),
	}
	s.server = &http.Server{
		Addr:              deps.Listen,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start(ctx context.Context) {
	s.startTime = time.Now()
	go func() {
		s.logger.Info("api server listening", "addr", s.deps.Listen)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", "error", err)
		}
	}()

	// Shut down when the application context ends.
	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Close drains in-flight requests and stops the listener.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleHealth reports process and store health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if s.deps.DB != nil {
		if err := s.deps.DB.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			s.logger.Error("health check failed", "error", err)
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":         status,
		"version":        s.deps.Version,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}
