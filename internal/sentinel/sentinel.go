// Package sentinel assembles screening and sealing. Every submitted payment
// is screened and recorded; only payments not recommended for blocking are
// handed to the sealer.
package sentinel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/sentinel/internal/screening"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

const (
	idLength = 7
)

// NewTransaction is what a caller supplies; the rest is stamped on intake
type NewTransaction struct {
	From              string           `json:"fromAddress,omitempty"`
	To                string           `json:"toAddress"`
	Amount            float64          `json:"amount"`
	Currency          string           `json:"currency,omitempty"`
	Category          payment.Category `json:"category"`
	Location          string           `json:"location,omitempty"`
	DeviceFingerprint string           `json:"deviceFingerprint,omitempty"`
}

type Decision struct {
	Transaction *payment.Transaction `json:"transaction"`
	Assessment  *payment.Assessment  `json:"assessment"`
	Source      screening.Source     `json:"source"`
	Queued      bool                 `json:"queued"`

	// Sealed reports the block carrying the transaction. Nil when not queued.
	Sealed <-chan ledger.SealResult `json:"-"`
}

type Stats struct {
	TotalTransactions int     `json:"totalTransactions" yaml:"totalTransactions"`
	TotalVolume       float64 `json:"totalVolume" yaml:"totalVolume"`
	FlaggedCount      int     `json:"flaggedCount" yaml:"flaggedCount"`
	BlockedCount      int     `json:"blockedCount" yaml:"blockedCount"`
	AvgRiskScore      float64 `json:"avgRiskScore" yaml:"avgRiskScore"`
	ChainHeight       uint64  `json:"chainHeight" yaml:"chainHeight"`
	PendingSeals      int     `json:"pendingSeals" yaml:"pendingSeals"`
}

type Service struct {
	ledger   *ledger.Ledger
	sealer   *ledger.Sealer
	screener *screening.Screener

	mu        sync.RWMutex
	decisions []*payment.Transaction

	now    func() time.Time
	newID  func() string
	logger logrus.FieldLogger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDSource(f func() string) Option {
	return func(s *Service) {
		s.newID = f
	}
}

func New(s *ledger.Sealer, sc *screening.Screener, opts ...Option) *Service {
	svc := &Service{
		ledger:   s.Ledger(),
		sealer:   s,
		screener: sc,
		now:      time.Now,
		newID:    shortID,
		logger:   logging.Component("sentinel"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

// Process screens a payment, records the decision and, unless it is blocked,
// queues it for sealing. It does not wait for the block to be mined.
func (s *Service) Process(ctx context.Context, in *NewTransaction) (*Decision, error) {
	tx := s.stamp(in)
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	a, src := s.screener.Screen(ctx, tx)
	tx.Apply(a)

	d := &Decision{
		Transaction: tx,
		Assessment:  a,
		Source:      src,
	}

	log := s.logger.WithFields(logrus.Fields{
		"tx":     tx.ID,
		"status": tx.Status,
		"risk":   a.RiskScore,
		"source": src,
	})

	if tx.Status != payment.StatusBlocked {
		r, err := tx.Record()
		if err != nil {
			return nil, errors.Wrap(err, "encoding record")
		}

		ch, err := s.sealer.Submit([]ledger.Record{r})
		if err != nil {
			s.record(tx)
			log.WithError(err).Warn("transaction screened but not queued")
			return nil, errors.Wrap(err, "queueing for seal")
		}

		d.Queued = true
		d.Sealed = ch
	}

	s.record(tx)
	log.WithField("queued", d.Queued).Info("processed transaction")

	return d, nil
}

func (s *Service) stamp(in *NewTransaction) *payment.Transaction {
	tx := &payment.Transaction{
		Version:           payment.Version1,
		ID:                s.newID(),
		Timestamp:         s.now().UnixMilli(),
		From:              in.From,
		To:                strings.TrimSpace(in.To),
		Amount:            in.Amount,
		Currency:          in.Currency,
		Location:          in.Location,
		Category:          in.Category,
		DeviceFingerprint: in.DeviceFingerprint,
		Status:            payment.StatusPending,
	}

	if tx.From == "" {
		tx.From = payment.DefaultSender
	}
	if tx.To == "" {
		tx.To = payment.DefaultRecipient
	}
	if tx.Currency == "" {
		tx.Currency = payment.DefaultCurrency
	}
	if tx.Location == "" {
		tx.Location = payment.DefaultLocation
	}
	if tx.DeviceFingerprint == "" {
		tx.DeviceFingerprint = payment.DefaultDevice
	}
	if tx.Category == "" {
		tx.Category = payment.CategoryP2P
	}

	return tx
}

func (s *Service) record(tx *payment.Transaction) {
	c := *tx

	s.mu.Lock()
	s.decisions = append(s.decisions, &c)
	s.mu.Unlock()
}

// Transactions returns every screened transaction in intake order, sealed or not
func (s *Service) Transactions() []payment.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]payment.Transaction, len(s.decisions))
	for i, tx := range s.decisions {
		txs[i] = *tx
	}

	return txs
}

func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalTransactions: len(s.decisions),
		ChainHeight:       s.ledger.GetLatest().Height,
		PendingSeals:      s.sealer.Pending(),
	}

	var risk float64
	for _, tx := range s.decisions {
		st.TotalVolume += tx.Amount

		switch tx.Status {
		case payment.StatusBlocked:
			st.BlockedCount++
			st.FlaggedCount++
		case payment.StatusFlagged:
			st.FlaggedCount++
		}

		if tx.RiskScore != nil {
			risk += *tx.RiskScore
		}
	}

	if st.TotalTransactions > 0 {
		st.AvgRiskScore = risk / float64(st.TotalTransactions)
	}

	return st
}
