package controllers

import (
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/avelarde/shopflow-backend/api/responses"
	"github.com/avelarde/shopflow-backend/pkg/config"
	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/logger"
	pkgredis "github.com/avelarde/shopflow-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopFlow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, db dbpkg.Pinger, redis pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopFlow-Env", cfg.App.Env)

		checks := map[string]string{}
		var unhealthy error

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				checks["database"] = err.Error()
				unhealthy = multierr.Append(unhealthy, fmt.Errorf("database: %w", err))
			} else {
				checks["database"] = "ok"
			}
		}
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				unhealthy = multierr.Append(unhealthy, fmt.Errorf("redis: %w", err))
			} else {
				checks["redis"] = "ok"
			}
		}

		if unhealthy != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, unhealthy, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
