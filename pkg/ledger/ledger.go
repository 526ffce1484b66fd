// Package ledger implements an append-only, hash-chained block ledger sealed
// with proof-of-work. There is a single writer and the chain lives in memory.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/digest"
)

// Archive receives a copy of every sealed block. It is never read back.
type Archive interface {
	Put(*Block) error
}

// Observer is notified after each successful seal
type Observer interface {
	ObserveSeal(b *Block, attempts uint64, took time.Duration)
}

type Ledger struct {
	mu     sync.RWMutex
	sealMu sync.Mutex

	blocks []Block

	difficulty    int
	maxIterations uint64

	engine   digest.Engine
	now      func() time.Time
	archive  Archive
	observer Observer
	logger   logrus.FieldLogger
}

// NewLedger validates the configuration and creates the genesis block
func NewLedger(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		engine: digest.Default(),
		now:    time.Now,
		logger: logging.Entry(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(l.difficulty, l.maxIterations); err != nil {
		return nil, err
	}
	if l.maxIterations == 0 {
		l.maxIterations = DefaultMaxIterations(l.difficulty)
	}

	g, err := l.genesis()
	if err != nil {
		return nil, err
	}
	l.blocks = []Block{*g}

	if l.archive != nil {
		if err := l.archive.Put(g.Clone()); err != nil {
			return nil, errors.Wrap(err, "archiving genesis")
		}
	}

	l.logger.WithFields(logrus.Fields{
		"difficulty": l.difficulty,
		"digest":     l.engine.Name(),
		"genesis":    g.Digest,
	}).Debug("ledger initialised")

	return l, nil
}

func (l *Ledger) Difficulty() int {
	return l.difficulty
}

func (l *Ledger) MaxIterations() uint64 {
	return l.maxIterations
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// GetLatest returns the block with the highest height
func (l *Ledger) GetLatest() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.blocks[len(l.blocks)-1].Clone()
}

func (l *Ledger) GetByHeight(h uint64) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if h >= uint64(len(l.blocks)) {
		return nil, errors.Wrapf(ErrNotFound, "block %d", h)
	}

	return l.blocks[h].Clone(), nil
}

// Blocks returns a snapshot of the whole chain
func (l *Ledger) Blocks() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bs := make([]*Block, len(l.blocks))
	for i := range l.blocks {
		bs[i] = l.blocks[i].Clone()
	}

	return bs
}

// Seal mines a block over records on top of the current tip and appends it.
// Seals are serialised; a cancelled or exhausted search appends nothing.
func (l *Ledger) Seal(ctx context.Context, records []Record) (*Block, error) {
	l.sealMu.Lock()
	defer l.sealMu.Unlock()

	prev := l.GetLatest()

	b := &Block{
		Height:         prev.Height + 1,
		CreatedAt:      l.now().UnixMilli(),
		Records:        cloneRecords(records),
		PreviousDigest: prev.Digest,
	}
	if b.Records == nil {
		b.Records = []Record{}
	}

	start := time.Now()
	attempts, err := l.mine(ctx, b)
	if err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"height":   b.Height,
			"attempts": attempts,
		}).Warn("sealing aborted")
		return nil, err
	}
	took := time.Since(start)

	b.Bloom, err = MakeBloom(b.Records)
	if err != nil {
		return nil, errors.Wrap(err, "creating block bloom filter")
	}

	l.mu.Lock()
	l.blocks = append(l.blocks, *b)
	l.mu.Unlock()

	l.logger.WithFields(logrus.Fields{
		"height":   b.Height,
		"nonce":    b.Nonce,
		"digest":   b.Digest,
		"records":  len(b.Records),
		"attempts": attempts,
		"took":     took,
	}).Info("sealed block")

	if l.archive != nil {
		if err := l.archive.Put(b.Clone()); err != nil {
			l.logger.WithError(err).WithField("height", b.Height).Error("archiving block")
		}
	}

	if l.observer != nil {
		l.observer.ObserveSeal(b, attempts, took)
	}

	return b.Clone(), nil
}

func (l *Ledger) digestOf(b *Block) (string, error) {
	d, err := Encode(b.Records, b.PreviousDigest, b.CreatedAt, b.Nonce)
	if err != nil {
		return "", err
	}

	return l.engine.Digest(d)
}
