package ledger

import "github.com/pkg/errors"

var (
	errDigestMismatch   = errors.New("digest does not match block contents")
	errDifficulty       = errors.New("digest does not meet difficulty")
	errPreviousMismatch = errors.New("previous digest does not match")
	errHeight           = errors.New("unexpected height")
)

// Finding is the outcome of walking a chain. Height is the first block that
// failed when Valid is false.
type Finding struct {
	Valid  bool   `json:"valid" yaml:"valid"`
	Blocks int    `json:"blocks" yaml:"blocks"`
	Height uint64 `json:"height,omitempty" yaml:"height,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Verify recomputes the digest of b and checks it against the stored digest,
// the difficulty (not for genesis) and the expected previous digest.
func (l *Ledger) Verify(b *Block, expectedPrevious string) bool {
	return l.check(b, expectedPrevious) == nil
}

func (l *Ledger) check(b *Block, expectedPrevious string) error {
	if b == nil {
		return errors.New("nil block")
	}

	d, err := l.digestOf(b)
	if err != nil {
		return err
	}
	if d != b.Digest {
		return errDigestMismatch
	}

	if !b.IsGenesis() && !MeetsDifficulty(b.Digest, l.difficulty) {
		return errDifficulty
	}

	if b.PreviousDigest != expectedPrevious {
		return errPreviousMismatch
	}

	return nil
}

// VerifyChain walks the chain from genesis
func (l *Ledger) VerifyChain() Finding {
	return l.VerifyBlocks(l.Blocks())
}

// VerifyBlocks checks an externally held chain, such as a snapshot, with this
// ledger's engine and difficulty
func (l *Ledger) VerifyBlocks(bs []*Block) Finding {
	f := Finding{Valid: true, Blocks: len(bs)}

	if len(bs) == 0 {
		f.Valid = false
		f.Reason = "empty chain"
		return f
	}

	prev := GenesisPreviousDigest
	for i, b := range bs {
		err := l.check(b, prev)
		if err == nil && b.Height != uint64(i) {
			err = errors.Wrapf(errHeight, "expected %d got %d", i, b.Height)
		}
		if err != nil {
			f.Valid = false
			f.Height = uint64(i)
			f.Reason = err.Error()
			return f
		}

		prev = b.Digest
	}

	return f
}
