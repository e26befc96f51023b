package api

import (
	"encoding/json"
	"net/http"

	"github.com/hauswerk/vorlage/recovery"
)

type errorBody struct {
	Error *recovery.Error `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError classifies err and writes it as a JSON error body with the
// matching HTTP status. Context values are already sanitized by the
// classification layer.
func respondError(w http.ResponseWriter, err error) {
	classified := recovery.FromError(err, nil)
	respondJSON(w, statusFor(classified.Type), errorBody{Error: classified})
}

func statusFor(errType recovery.ErrorType) int {
	switch errType {
	case recovery.TypeTemplateNotFound:
		return http.StatusNotFound
	case recovery.TypeInvalidTemplateData:
		return http.StatusBadRequest
	case recovery.TypePermissionDenied:
		return http.StatusForbidden
	case recovery.TypeNetworkError:
		return http.StatusBadGateway
	case recovery.TypeTemplateLoadFailed, recovery.TypeTemplateSaveFailed, recovery.TypeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
