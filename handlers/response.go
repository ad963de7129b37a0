package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"moneymanager/backend/middleware"
	"moneymanager/backend/services"

	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps ledger errors to HTTP statuses. Anything unrecognised is a
// client error, echoed back as-is.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEditWindowExpired):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	log.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(r.Context()),
		"status":     status,
	}).WithError(err).Warn("Request failed")

	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// NotFound answers requests that match no route
var NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found"})
})

// MethodNotAllowed answers requests whose path matches a route but not its method
var MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
})
