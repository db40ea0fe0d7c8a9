package handlers

import (
	"context"
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/config"
)

// Pinger reports whether the backing store is reachable. *database.DB
// satisfies it via the embedded pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingResponse carries service identity for the /ping endpoint.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
}

// HealthHandler serves the liveness endpoints used by the hosting
// platform. /health checks the database; /ping identifies the build.
type HealthHandler struct {
	cfg    *config.Config
	store  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil store skips the
// database check and reports liveness only.
func NewHealthHandler(cfg *config.Config, store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, store: store, logger: logger}
}

// RegisterRoutes registers the health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health. A failed database ping answers 503 so the
// platform stops routing traffic to an instance that cannot serve data.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Error("Health check failed", zap.Error(err))
			_ = WriteError(w, http.StatusServiceUnavailable, "Database unreachable", "")
			return
		}
	}
	_ = WriteSuccess(w, http.StatusOK, "ok", nil)
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "dataset-webapi",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
