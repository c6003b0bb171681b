package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	checker     healthChecker
	startupTime time.Time
}

func newHealthHandler(checker healthChecker) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{responder: NewResponder(logger), logger: logger, checker: checker}
}

func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := h.checker.Health(r.Context())
		status := http.StatusOK
		if db["status"] != "up" {
			status = http.StatusServiceUnavailable
			h.logger.Warn().Interface("database", db).Msg("Health check failed")
		}

		body := map[string]interface{}{"database": db}
		if !h.startupTime.IsZero() {
			body["uptime"] = time.Since(h.startupTime).Round(time.Second).String()
		}
		h.responder.WriteStatusJSON(w, status, body)
	}
}
