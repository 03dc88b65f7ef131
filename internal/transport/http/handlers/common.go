package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amora-app/backend/internal/services/auth"
	httperrors "github.com/amora-app/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

func writeForbidden(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
		Code:    "FORBIDDEN",
		Message: message,
	})
}

func writeNotFound(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
		Code:    "NOT_FOUND",
		Message: message,
	})
}

func writeConflict(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{
		Code:    "CONFLICT",
		Message: message,
	})
}

func writeInternal(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
		Code:    "INTERNAL",
		Message: "internal error",
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
		Code:    "UNAUTHORIZED",
		Message: "authentication required",
	})
}

// identityFrom returns the authenticated caller or writes a 401.
func identityFrom(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.UserID == "" {
		writeUnauthorized(w)
		return auth.Identity{}, false
	}
	return identity, true
}
