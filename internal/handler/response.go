package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/auth"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/repository"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service and domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidPaymentType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrMalformedInput),
		errors.Is(err, models.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidRegistration):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProviderUnavailable),
		errors.Is(err, service.ErrNotifierUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
		writeMessage(w, status, "internal server error")
		return
	}
	writeMessage(w, status, err.Error())
}

// writeAuthError reports every sign-in failure other than a missing provider as 401
func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	if status := statusFor(err); status == http.StatusServiceUnavailable || status == http.StatusUnauthorized {
		h.writeError(w, err)
		return
	}
	h.log.Warnf("Sign-in failed: %v", err)
	writeMessage(w, http.StatusUnauthorized, "sign-in failed")
}
