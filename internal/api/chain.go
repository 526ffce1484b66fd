package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

// BlockView is a block with its records decoded as transactions
type BlockView struct {
	ledger.Block `yaml:",inline"`
	Transactions []*payment.Transaction `json:"transactions" yaml:"transactions"`

	// Undecoded counts records that are not payment transactions
	Undecoded int `json:"undecodedRecords,omitempty" yaml:"undecodedRecords,omitempty"`
}

func NewBlockView(b *ledger.Block) *BlockView {
	v := &BlockView{Block: *b, Transactions: make([]*payment.Transaction, 0, len(b.Records))}

	for _, r := range b.Records {
		tx, err := payment.FromRecord(r)
		if err != nil {
			v.Undecoded++
			logging.WithError(err).WithField("height", b.Height).Warn("undecodable record")
			continue
		}
		v.Transactions = append(v.Transactions, tx)
	}

	return v
}

type chainHandler struct {
	BaseHandler
}

func (h *chainHandler) Routes(r chi.Router) {
	r.Route("/chain", func(r chi.Router) {
		r.Get("/", h.chain)
		r.Get("/latest", h.latest)
		r.Get("/verify", h.verify)
		r.Get("/{height}", h.block)
	})
}

func (h *chainHandler) chain(w http.ResponseWriter, r *http.Request) {
	bs := h.a.s.Ledger().Blocks()

	vs := make([]*BlockView, len(bs))
	for i, b := range bs {
		vs[i] = NewBlockView(b)
	}

	writeJSON(w, http.StatusOK, vs)
}

func (h *chainHandler) latest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewBlockView(h.a.s.Ledger().GetLatest()))
}

func (h *chainHandler) block(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(chi.URLParam(r, "height"), 10, 64)
	if err != nil {
		writeError(w, errors.Wrap(ledger.ErrNotFound, "invalid height"))
		return
	}

	b, err := h.a.s.Ledger().GetByHeight(height)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewBlockView(b))
}

func (h *chainHandler) verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.a.s.Ledger().VerifyChain())
}
