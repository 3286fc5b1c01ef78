package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports process and dependency health.
type HealthController struct {
	db    Pinger
	redis Pinger
	logg  *logger.Logger
}

// NewHealthController wires the health endpoint. Nil dependencies are skipped.
func NewHealthController(db, redis Pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logg: logg}
}

// Live reports process liveness only; it never touches dependencies.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.Success(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready responds 200 when every wired dependency answers, 503 otherwise.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	probe := func(name string, dep Pinger) {
		if dep == nil {
			return
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unreachable"
			healthy = false
			if c.logg != nil {
				c.logg.Error(ctx, name+" health check failed", err)
			}
			return
		}
		checks[name] = "ok"
	}

	probe("database", c.db)
	probe("redis", c.redis)

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	responses.Success(w, status, map[string]any{
		"status": map[bool]string{true: "healthy", false: "degraded"}[healthy],
		"checks": checks,
	})
}
