package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// writeServiceError maps a service error kind to a status code. Unknown
// errors are logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInviteExpired):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	}

	if code == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "op", op, slogx.Err(err))
		httpx.WriteError(w, code, "Server error")
		return
	}
	httpx.WriteError(w, code, err.Error())
}
