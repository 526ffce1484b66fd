package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WithError(err).Error("writing response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, payment.ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrSealerStopped), errors.Is(err, ledger.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.WithError(err).Error("api request failed")
	}

	writeJSON(w, code, &errorResponse{Error: err.Error()})
}
