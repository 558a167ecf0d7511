// Package respond writes the JSON envelope shared by every endpoint:
// {"success": bool, "message": string, ...payload}.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"go.uber.org/zap"
)

// Payload holds the fields merged into the envelope next to success and message.
type Payload map[string]interface{}

func JSON(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = status < http.StatusBadRequest
	if message != "" {
		body["message"] = message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Error maps err onto its status code. Internal errors are logged and
// answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	JSON(w, status, apperr.PublicMessage(err), nil)
}
