package ledger

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// sealEncoding holds the canonical msgpack prefix of a block,
// [records, previous_digest, created_at, ...], so that the search
// loop only has to append the nonce on each attempt.
type sealEncoding struct {
	prefix []byte
	buf    bytes.Buffer
	enc    *msgpack.Encoder
}

func newSealEncoding(records []Record, prev string, createdAt int64) (*sealEncoding, error) {
	var pb bytes.Buffer
	enc := msgpack.NewEncoder(&pb)

	if err := enc.EncodeArrayLen(4); err != nil {
		return nil, errors.Wrap(err, "encoding header")
	}
	if err := enc.EncodeArrayLen(len(records)); err != nil {
		return nil, errors.Wrap(err, "encoding records len")
	}
	for _, r := range records {
		if err := enc.EncodeBytes(r); err != nil {
			return nil, errors.Wrap(err, "encoding record")
		}
	}
	if err := enc.EncodeString(prev); err != nil {
		return nil, errors.Wrap(err, "encoding previous digest")
	}
	if err := enc.EncodeInt(createdAt); err != nil {
		return nil, errors.Wrap(err, "encoding timestamp")
	}

	s := &sealEncoding{prefix: pb.Bytes()}
	s.enc = msgpack.NewEncoder(&s.buf)

	return s, nil
}

// withNonce returns the full canonical encoding for nonce. The returned
// slice is only valid until the next call.
func (s *sealEncoding) withNonce(nonce uint64) ([]byte, error) {
	s.buf.Reset()
	s.buf.Write(s.prefix)

	if err := s.enc.EncodeUint(nonce); err != nil {
		return nil, errors.Wrap(err, "encoding nonce")
	}

	return s.buf.Bytes(), nil
}

// Encode returns the canonical byte sequence a block digest is computed over
func Encode(records []Record, prev string, createdAt int64, nonce uint64) ([]byte, error) {
	s, err := newSealEncoding(records, prev, createdAt)
	if err != nil {
		return nil, err
	}

	d, err := s.withNonce(nonce)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), d...), nil
}
