package ledger

// Record is an opaque, already screened payload carried by a block
type Record []byte

type Block struct {
	Height         uint64   `msgpack:"h" json:"height" yaml:"height"`
	CreatedAt      int64    `msgpack:"t" json:"createdAt" yaml:"createdAt"`
	Records        []Record `msgpack:"r" json:"records" yaml:"-"`
	PreviousDigest string   `msgpack:"p" json:"previousDigest" yaml:"previousDigest"`
	Digest         string   `msgpack:"d" json:"digest" yaml:"digest"`
	Nonce          uint64   `msgpack:"n" json:"nonce" yaml:"nonce"`

	// Bloom is derived from Records and is not covered by Digest
	Bloom []byte `msgpack:"b,omitempty" json:"-" yaml:"-"`
}

// IsGenesis reports whether the block is the trusted root of a chain
func (b *Block) IsGenesis() bool {
	return b.Height == 0
}

// Clone returns a deep copy so callers can never mutate a stored block
func (b *Block) Clone() *Block {
	c := *b
	c.Records = cloneRecords(b.Records)
	if b.Bloom != nil {
		c.Bloom = append([]byte(nil), b.Bloom...)
	}

	return &c
}

func cloneRecords(rs []Record) []Record {
	if rs == nil {
		return nil
	}

	c := make([]Record, len(rs))
	for i, r := range rs {
		c[i] = append(Record(nil), r...)
	}

	return c
}
