package ledger

import (
	"bytes"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	falsePositive = 0.01
	minBloomSize  = 16
)

func newBloom(n int) *bloom.BloomFilter {
	if n < minBloomSize {
		n = minBloomSize
	}

	return bloom.NewWithEstimates(uint(n), falsePositive)
}

func MakeBloom(records []Record) ([]byte, error) {
	b := newBloom(len(records))

	for _, r := range records {
		b.Add(r)
	}

	return b.GobEncode()
}

func BloomContains(b []byte, r Record) (bool, error) {
	f := newBloom(0)

	if err := f.GobDecode(b); err != nil {
		return false, err
	}

	return f.Test(r), nil
}

// ContainsRecord finds the first block carrying r. Block blooms narrow the
// search and an exact comparison confirms it.
func (l *Ledger) ContainsRecord(r Record) (uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := range l.blocks {
		b := &l.blocks[i]
		if len(b.Records) == 0 {
			continue
		}

		if len(b.Bloom) != 0 {
			maybe, err := BloomContains(b.Bloom, r)
			if err == nil && !maybe {
				continue
			}
		}

		for _, br := range b.Records {
			if bytes.Equal(br, r) {
				return b.Height, true
			}
		}
	}

	return 0, false
}
