package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

// KeySource publishes the session verification keys.
type KeySource interface {
	KID() string
	PublicJWKS() jwtx.JWKS
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc. The same handler serves /api/health for the web
// client.
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection and that a session signing key is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	lostfoundsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys KeySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &lostfoundsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if keys == nil || keys.KID() == "" {
			checks.Signer = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, lostfoundsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// JWKSHandler godoc
//
//	@Summary		Session verification keys
//	@Description	Public keys that verify session tokens (EdDSA).
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.JWKSResponse
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys KeySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
