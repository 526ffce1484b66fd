package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/internal/sentinel"
	"github.com/tcfw/sentinel/pkg/payment"
)

const maxBodySize = 64 << 10

type txHandler struct {
	BaseHandler
}

func (h *txHandler) Routes(r chi.Router) {
	r.Post("/transactions", h.create)
	r.Get("/transactions", h.list)
	r.Get("/stats", h.stats)
}

func (h *txHandler) create(w http.ResponseWriter, r *http.Request) {
	in := &sentinel.NewTransaction{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(in); err != nil {
		writeError(w, errors.Wrap(payment.ErrInvalidTransaction, err.Error()))
		return
	}

	d, err := h.a.s.Process(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, d)
}

func (h *txHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.a.s.Transactions())
}

func (h *txHandler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.a.s.Stats())
}
