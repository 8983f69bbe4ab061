package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/netx"
	"github.com/cryptobulldev/userdash/internal/server/repositories/refreshtokens"
)

// writeServiceError maps service errors onto status codes. Anything
// unrecognized is logged and reported as a 500 without details.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		netx.WriteError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
	case errors.Is(err, common.ErrorNotFound):
		netx.WriteError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		netx.WriteError(w, http.StatusConflict, "email_taken", "email is already registered")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		netx.WriteError(w, http.StatusUnauthorized, "refresh_token_expired", "refresh token expired")
	case errors.Is(err, common.ErrorUnauthorized):
		if op == "auth.refresh" {
			netx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is not valid")
			return
		}
		netx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, refreshtokens.ErrRedisUnavailable):
		h.log.Error(r.Context(), op+".fail", "error", err)
		netx.WriteError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
	default:
		h.log.Error(r.Context(), op+".fail", "error", err)
		netx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, common.ErrorValidation.Error()+": "); i >= 0 {
		return msg[i+len(common.ErrorValidation.Error())+2:]
	}
	return msg
}
