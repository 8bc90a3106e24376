// Package api implements the JSON storefront endpoints: catalog browsing,
// cart mutation, coupon and checkout options, and order submission.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/middleware"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a structured JSON error derived from the domain
// error code, logging server-side failures at error level and client
// mistakes at info level.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
	}
	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	body := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}

	// Stock rejections carry the maximum purchasable amount so the client
	// can offer it as a one-tap correction.
	if available, ok := domain.StockLimit(err); ok {
		body["error"].(map[string]any)["available"] = available
	}

	respondJSON(w, status, body)
}

// errorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable // 503
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Errorf(domain.EINVALID, "api.decode", "Invalid request body")
	}
	return nil
}
