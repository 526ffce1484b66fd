// Package digest provides the hash primitives used to seal and verify ledger
// blocks. An Engine maps an arbitrary byte sequence to a fixed length,
// lowercase hex string.
package digest

import (
	"encoding/hex"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	// Size is the length in bytes of every digest produced by an Engine
	Size = 32

	// HexSize is the length of the hex encoded digest
	HexSize = Size * 2

	SHA2_256 = "sha2-256"
	SHA3_256 = "sha3-256"
)

var (
	ErrDigestUnavailable = errors.New("digest engine unavailable")
)

type Engine interface {
	Name() string
	Digest([]byte) (string, error)
}

var (
	_ Engine = SHA256{}
	_ Engine = SHA3{}
)

// SHA256 hashes via multihash SHA2-256 and returns the raw digest part
type SHA256 struct{}

func (SHA256) Name() string { return SHA2_256 }

func (SHA256) Digest(d []byte) (string, error) {
	mh, err := multihash.Sum(d, multihash.SHA2_256, Size)
	if err != nil {
		return "", errors.Wrap(ErrDigestUnavailable, err.Error())
	}

	dec, err := multihash.Decode(mh)
	if err != nil {
		return "", errors.Wrap(ErrDigestUnavailable, err.Error())
	}

	return hex.EncodeToString(dec.Digest), nil
}

type SHA3 struct{}

func (SHA3) Name() string { return SHA3_256 }

func (SHA3) Digest(d []byte) (string, error) {
	s := sha3.Sum256(d)
	return hex.EncodeToString(s[:]), nil
}

// Default is the engine used when none is configured
func Default() Engine {
	return SHA256{}
}

// ByName resolves an engine from its configured name
func ByName(name string) (Engine, error) {
	switch name {
	case "", SHA2_256:
		return SHA256{}, nil
	case SHA3_256:
		return SHA3{}, nil
	default:
		return nil, errors.Wrapf(ErrDigestUnavailable, "unknown digest %q", name)
	}
}

// IsHex reports whether s looks like a digest produced by an Engine
func IsHex(s string) bool {
	if len(s) != HexSize {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}

	return true
}
