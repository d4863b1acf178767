package httptransport

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"eventhub/internal/platform/redis"
	"eventhub/pkg/platform/httputil"
)

// HealthHandler reports liveness and readiness. Liveness is unconditional;
// readiness checks the backing stores that are actually configured.
type HealthHandler struct {
	db    *sql.DB
	redis *redis.Client
}

func NewHealthHandler(db *sql.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HandleLiveness handles GET /healthz requests.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz requests.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, checks)
}
