package handler

import (
	"errors"
	"net/http"

	"sharecast/internal/domain"
	"sharecast/internal/domain/models/identity"
	"sharecast/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requirePrincipal extracts the authenticated principal or writes a 401.
// The bool return tells the handler whether to continue.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (identity.Principal, bool) {
	principal, found := httputil.GetPrincipal(r)
	if !found || principal.ID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return identity.Principal{}, false
	}
	return principal, true
}
