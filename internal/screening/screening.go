// Package screening decides whether a payment may be sealed. A remote
// classifier is consulted first and a deterministic local policy answers
// whenever it cannot.
package screening

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/payment"
)

var (
	ErrBadAssessment = errors.New("classifier returned an invalid assessment")
)

type Classifier interface {
	Classify(context.Context, *payment.Transaction) (*payment.Assessment, error)
}

type Source string

const (
	SourceClassifier Source = "classifier"
	SourceFallback   Source = "fallback"
)

// Observer is told about every screening outcome
type Observer interface {
	ObserveScreen(rec payment.Recommendation, src Source)
}

type Screener struct {
	classifier Classifier
	fallback   *FallbackPolicy
	timeout    time.Duration
	observer   Observer
	logger     logrus.FieldLogger
}

type ScreenerOption func(*Screener)

func WithObserver(o Observer) ScreenerOption {
	return func(s *Screener) {
		s.observer = o
	}
}

func WithLogger(l logrus.FieldLogger) ScreenerOption {
	return func(s *Screener) {
		s.logger = l
	}
}

// NewScreener builds a screener. A nil classifier means every decision comes
// from the fallback policy.
func NewScreener(c Classifier, f *FallbackPolicy, timeout time.Duration, opts ...ScreenerOption) *Screener {
	if f == nil {
		f = NewFallbackPolicy(DefaultThreshold)
	}

	s := &Screener{
		classifier: c,
		fallback:   f,
		timeout:    timeout,
		logger:     logging.Component("screening"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Screen always yields an assessment. Classifier errors and timeouts are
// recovered with the fallback policy and never returned.
func (s *Screener) Screen(ctx context.Context, tx *payment.Transaction) (*payment.Assessment, Source) {
	a, src := s.screen(ctx, tx)

	if s.observer != nil {
		s.observer.ObserveScreen(a.Recommendation, src)
	}

	return a, src
}

func (s *Screener) screen(ctx context.Context, tx *payment.Transaction) (*payment.Assessment, Source) {
	if s.classifier == nil {
		return s.fallback.Assess(tx), SourceFallback
	}

	cctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	a, err := s.classifier.Classify(cctx, tx)
	if err == nil {
		err = ValidateAssessment(a)
	}
	if err != nil {
		s.logger.WithError(err).WithField("tx", tx.ID).Warn("classifier unavailable, using fallback policy")
		return s.fallback.Assess(tx), SourceFallback
	}

	return a, SourceClassifier
}

// ValidateAssessment checks a classifier response against the contract
func ValidateAssessment(a *payment.Assessment) error {
	if a == nil {
		return errors.Wrap(ErrBadAssessment, "empty response")
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		return errors.Wrapf(ErrBadAssessment, "risk score %v out of range", a.RiskScore)
	}
	if !a.Recommendation.Valid() {
		return errors.Wrapf(ErrBadAssessment, "unknown recommendation %q", a.Recommendation)
	}
	if len(a.MitigationSteps) == 0 {
		return errors.Wrap(ErrBadAssessment, "no mitigation steps")
	}

	return nil
}
