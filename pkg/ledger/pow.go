package ledger

import (
	"context"

	"github.com/pkg/errors"
)

const (
	// MaxDifficulty bounds the configurable difficulty. Each extra leading
	// zero multiplies the expected search by 16; at 8 that is ~4.3e9 digests.
	MaxDifficulty = 8

	// ctxCheckInterval is how many nonces are tried between cancellation checks
	ctxCheckInterval = 4096

	capMultiplier = 64
)

// MeetsDifficulty reports whether digest starts with difficulty '0' hex chars
func MeetsDifficulty(digest string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(digest) < difficulty {
		return false
	}

	for i := 0; i < difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}

	return true
}

// ExpectedAttempts is the mean number of digests needed to meet difficulty
func ExpectedAttempts(difficulty int) uint64 {
	return uint64(1) << (4 * uint(difficulty))
}

// DefaultMaxIterations is the search cap used when none is configured. Missing
// a match within 64x the expected attempts has probability ~e^-64.
func DefaultMaxIterations(difficulty int) uint64 {
	return capMultiplier * ExpectedAttempts(difficulty)
}

func validateConfig(difficulty int, maxIterations uint64) error {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return errors.Wrapf(ErrConfiguration, "difficulty %d outside [0, %d]", difficulty, MaxDifficulty)
	}

	if maxIterations != 0 && maxIterations < ExpectedAttempts(difficulty) {
		return errors.Wrapf(ErrConfiguration, "iteration cap %d below expected attempts %d for difficulty %d",
			maxIterations, ExpectedAttempts(difficulty), difficulty)
	}

	return nil
}

// ValidateConfig checks a difficulty and iteration cap before a ledger is built
func ValidateConfig(difficulty int, maxIterations uint64) error {
	return validateConfig(difficulty, maxIterations)
}

// mine searches nonces from 0 upward and sets b.Nonce and b.Digest on the
// first match. b is left untouched on failure.
func (l *Ledger) mine(ctx context.Context, b *Block) (uint64, error) {
	enc, err := newSealEncoding(b.Records, b.PreviousDigest, b.CreatedAt)
	if err != nil {
		return 0, err
	}

	var attempts uint64
	for nonce := uint64(0); attempts < l.maxIterations; nonce++ {
		if attempts%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return attempts, err
			}
		}

		d, err := enc.withNonce(nonce)
		if err != nil {
			return attempts, err
		}

		h, err := l.engine.Digest(d)
		if err != nil {
			return attempts, errors.Wrap(err, "digesting block")
		}
		attempts++

		if MeetsDifficulty(h, l.difficulty) {
			b.Nonce = nonce
			b.Digest = h
			return attempts, nil
		}
	}

	return attempts, errors.Wrapf(ErrSearchExhausted, "%d attempts at difficulty %d", attempts, l.difficulty)
}
