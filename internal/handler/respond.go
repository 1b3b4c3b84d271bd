package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"livepoll/internal/domain"
	"livepoll/internal/middleware"
	"livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps any error to the JSON error envelope. Unknown errors
// become internal errors so callers never see raw error strings.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := errors.AsAppError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(appErr).WithField("path", r.URL.Path).Error("Request failed")
	}

	response := errors.ErrorResponse{Success: false}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if requestID, ok := r.Context().Value(middleware.RequestIDContextKey).(string); ok {
		response.Error.RequestID = requestID
	}

	respondJSON(w, appErr.StatusCode, response)
}

// userID extracts the authenticated presenter id set by the auth middleware.
func userID(r *http.Request) (int64, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*domain.AuthClaims)
	if !ok || claims == nil {
		return 0, false
	}
	return claims.UserID, true
}
