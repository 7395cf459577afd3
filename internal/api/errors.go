package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"energyportal/internal/backend"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteBackendError maps a backend client failure onto the portal's error envelope.
func WriteBackendError(w http.ResponseWriter, err error) {
	status, code := BackendErrorStatus(err)
	WriteError(w, status, code, backend.UserMessage(err))
}

func BackendErrorStatus(err error) (int, string) {
	var se *backend.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return http.StatusUnauthorized, "UNAUTHORIZED"
		case http.StatusForbidden:
			return http.StatusForbidden, "FORBIDDEN"
		case http.StatusNotFound:
			return http.StatusNotFound, "NOT_FOUND"
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return http.StatusBadRequest, "VALIDATION_FAILED"
		}
		return http.StatusBadGateway, "BACKEND_ERROR"
	}
	var re *backend.RejectedError
	if errors.As(err, &re) {
		return http.StatusUnprocessableEntity, "BACKEND_REJECTED"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "BACKEND_TIMEOUT"
	}
	var te *backend.TransportError
	if errors.As(err, &te) {
		return http.StatusBadGateway, "BACKEND_UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}
