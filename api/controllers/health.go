package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/hannah-myrrh/csu-biolab-alers/api/responses"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/config"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Biolab-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the database and cache before reporting ready. A
// degraded dependency yields 503 with the per-check breakdown.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checkDependency(ctx, logg, checks, &healthy, "database", dbP)
		checkDependency(ctx, logg, checks, &healthy, "redis", redisP)

		w.Header().Set("X-Biolab-Env", cfg.App.Env)
		status := "ready"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}

func checkDependency(ctx context.Context, logg *logger.Logger, checks map[string]string, healthy *bool, name string, p Pinger) {
	if p == nil {
		checks[name] = "skipped"
		return
	}
	if err := p.Ping(ctx); err != nil {
		checks[name] = "unreachable"
		*healthy = false
		if logg != nil {
			logg.Error(logg.WithField(ctx, "dependency", name), "health.check_failed", err)
		}
		return
	}
	checks[name] = "ok"
}
