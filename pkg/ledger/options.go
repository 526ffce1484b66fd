package ledger

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/sentinel/pkg/digest"
)

type Option func(*Ledger) error

func WithDifficulty(d int) Option {
	return func(l *Ledger) error {
		l.difficulty = d
		return nil
	}
}

// WithMaxIterations caps the nonce search. Zero derives the cap from the
// difficulty, see DefaultMaxIterations.
func WithMaxIterations(n uint64) Option {
	return func(l *Ledger) error {
		l.maxIterations = n
		return nil
	}
}

func WithDigestEngine(e digest.Engine) Option {
	return func(l *Ledger) error {
		if e == nil {
			return errors.Wrap(digest.ErrDigestUnavailable, "nil engine")
		}
		l.engine = e
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) error {
		l.now = now
		return nil
	}
}

func WithArchive(a Archive) Option {
	return func(l *Ledger) error {
		l.archive = a
		return nil
	}
}

func WithObserver(o Observer) Option {
	return func(l *Ledger) error {
		l.observer = o
		return nil
	}
}

func WithLogger(lg logrus.FieldLogger) Option {
	return func(l *Ledger) error {
		l.logger = lg
		return nil
	}
}
