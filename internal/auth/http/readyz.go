package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyStatus reports whether the signing key is loaded.
type KeyStatus interface {
	IsReady() bool
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the user database, the session store and the signing key. An unreachable session store reports degraded but stays ready.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(db, sessions Pinger, key KeyStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Sessions: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			overallStatus = "degraded"
		}
		fail := func(field *string, msg string) {
			degrade(field, msg)
			statusCode = http.StatusServiceUnavailable
		}

		if err := db.Ping(r.Context()); err != nil {
			fail(&checks.Database, err.Error())
		}

		if !key.IsReady() {
			fail(&checks.Signer, "no key loaded")
		}

		// Sessions are bookkeeping only, so Redis trouble never takes the
		// replica out of rotation.
		if err := sessions.Ping(r.Context()); err != nil {
			degrade(&checks.Sessions, err.Error())
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status: overallStatus,
			Checks: checks,
		})
	}
}
