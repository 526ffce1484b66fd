package ledger

import "github.com/pkg/errors"

// GenesisPreviousDigest is the previous digest of every genesis block. It is
// shorter than any engine output so it never equals a real digest.
const GenesisPreviousDigest = "0"

// genesis builds the trusted root. It is not mined and its digest does not
// have to meet the difficulty.
func (l *Ledger) genesis() (*Block, error) {
	b := &Block{
		Height:         0,
		CreatedAt:      l.now().UnixMilli(),
		Records:        []Record{},
		PreviousDigest: GenesisPreviousDigest,
		Nonce:          0,
	}

	d, err := l.digestOf(b)
	if err != nil {
		return nil, errors.Wrap(err, "digesting genesis")
	}
	b.Digest = d

	return b, nil
}
