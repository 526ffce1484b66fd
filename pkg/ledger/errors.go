package ledger

import "github.com/pkg/errors"

var (
	ErrNotFound = errors.New("not found")

	ErrConfiguration   = errors.New("invalid ledger configuration")
	ErrSearchExhausted = errors.New("nonce search exhausted iteration cap")

	ErrSealerStopped = errors.New("sealer stopped")
	ErrQueueFull     = errors.New("sealer queue full")
)
