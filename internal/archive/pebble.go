// Package archive keeps an out-of-band copy of sealed blocks. The ledger
// never reads it back; it exists for offline inspection only.
package archive

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	cacheSize = 8 << 20

	blockPrefix = 'b'
)

var (
	_ ledger.Archive = (*PebbleArchive)(nil)

	blockLower = []byte{blockPrefix, '/'}
	blockUpper = []byte{blockPrefix, '/' + 1}
)

type PebbleArchive struct {
	db *pebble.DB
}

type Option func(*pebble.Options)

// WithMemFS keeps the archive in memory, used by tests
func WithMemFS() Option {
	return func(o *pebble.Options) {
		o.FS = vfs.NewMem()
	}
}

// WithFS opens the archive on the given filesystem
func WithFS(fs vfs.FS) Option {
	return func(o *pebble.Options) {
		o.FS = fs
	}
}

func Open(path string, opts ...Option) (*PebbleArchive, error) {
	c := pebble.NewCache(cacheSize)
	defer c.Unref()

	o := &pebble.Options{Cache: c}
	for _, opt := range opts {
		opt(o)
	}

	db, err := pebble.Open(path, o)
	if err != nil {
		return nil, errors.Wrap(err, "opening archive")
	}

	logging.Component("archive").WithField("path", path).Info("archive opened")

	return &PebbleArchive{db: db}, nil
}

func blockKey(h uint64) []byte {
	k := make([]byte, 2+8)
	k[0] = blockPrefix
	k[1] = '/'
	binary.BigEndian.PutUint64(k[2:], h)
	return k
}

func (a *PebbleArchive) Put(b *ledger.Block) error {
	d, err := msgpack.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "marshaling block")
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	// a genesis starts a new run; blocks of earlier runs must not mix with it
	if b.IsGenesis() {
		if err := batch.DeleteRange(blockLower, blockUpper, nil); err != nil {
			return errors.Wrap(err, "clearing previous run")
		}
	}

	if err := batch.Set(blockKey(b.Height), d, nil); err != nil {
		return errors.Wrap(err, "storing block")
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "committing block")
	}

	return nil
}

func (a *PebbleArchive) Get(h uint64) (*ledger.Block, error) {
	d, done, err := a.db.Get(blockKey(h))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, errors.Wrapf(ledger.ErrNotFound, "archived block %d", h)
		}
		return nil, errors.Wrap(err, "getting block")
	}
	defer done.Close()

	b := &ledger.Block{}
	if err := msgpack.Unmarshal(d, b); err != nil {
		return nil, errors.Wrap(err, "unmarshalling block")
	}

	return b, nil
}

// All returns every archived block in height order
func (a *PebbleArchive) All() ([]*ledger.Block, error) {
	iter := a.db.NewIter(&pebble.IterOptions{
		LowerBound: blockLower,
		UpperBound: blockUpper,
	})

	bs := []*ledger.Block{}
	for iter.First(); iter.Valid(); iter.Next() {
		b := &ledger.Block{}
		if err := msgpack.Unmarshal(iter.Value(), b); err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "unmarshalling block")
		}
		bs = append(bs, b)
	}

	if err := iter.Close(); err != nil {
		return nil, errors.Wrap(err, "iterating archive")
	}

	return bs, nil
}

func (a *PebbleArchive) Close() error {
	return a.db.Close()
}
