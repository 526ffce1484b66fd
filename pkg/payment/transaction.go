package payment

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	Version1 uint8 = 1

	DefaultCurrency  = "INR"
	DefaultSender    = "self@upi_user"
	DefaultRecipient = "unknown@upi"
	DefaultLocation  = "New Delhi, India"
	DefaultDevice    = "ANDROID-TX-SAFE-1"
)

var (
	ErrInvalidTransaction = errors.New("invalid transaction")
)

type Category string

const (
	CategoryP2P      Category = "P2P"
	CategoryMerchant Category = "MERCHANT"
	CategoryBillPay  Category = "BILL_PAY"
	CategoryReload   Category = "RELOAD"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryP2P, CategoryMerchant, CategoryBillPay, CategoryReload:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusValidated Status = "VALIDATED"
	StatusFlagged   Status = "FLAGGED"
	StatusBlocked   Status = "BLOCKED"
)

type Transaction struct {
	Version           uint8    `msgpack:"v" json:"-" yaml:"-"`
	ID                string   `msgpack:"i" json:"id" yaml:"id"`
	Timestamp         int64    `msgpack:"t" json:"timestamp" yaml:"timestamp"`
	From              string   `msgpack:"f" json:"fromAddress" yaml:"fromAddress"`
	To                string   `msgpack:"o" json:"toAddress" yaml:"toAddress"`
	Amount            float64  `msgpack:"a" json:"amount" yaml:"amount"`
	Currency          string   `msgpack:"c" json:"currency" yaml:"currency"`
	Location          string   `msgpack:"l" json:"location" yaml:"location"`
	Category          Category `msgpack:"k" json:"category" yaml:"category"`
	DeviceFingerprint string   `msgpack:"d" json:"deviceFingerprint" yaml:"deviceFingerprint"`
	Status            Status   `msgpack:"s" json:"status" yaml:"status"`
	RiskScore         *float64 `msgpack:"r,omitempty" json:"riskScore,omitempty" yaml:"riskScore,omitempty"`
	FraudAnalysis     string   `msgpack:"x,omitempty" json:"fraudAnalysis,omitempty" yaml:"fraudAnalysis,omitempty"`
	MitigationSteps   []string `msgpack:"m,omitempty" json:"mitigationSteps,omitempty" yaml:"mitigationSteps,omitempty"`
}

// Validate checks the fields a caller supplies before screening
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return errors.Wrap(ErrInvalidTransaction, "amount must be positive")
	}
	if strings.TrimSpace(t.To) == "" {
		return errors.Wrap(ErrInvalidTransaction, "missing destination VPA")
	}
	if !t.Category.Valid() {
		return errors.Wrapf(ErrInvalidTransaction, "unknown category %q", t.Category)
	}

	return nil
}

// Apply copies the outcome of screening onto the transaction
func (t *Transaction) Apply(a *Assessment) {
	score := a.RiskScore
	t.RiskScore = &score
	t.Status = a.Recommendation.Status()
	t.FraudAnalysis = a.Reason
	t.MitigationSteps = append([]string(nil), a.MitigationSteps...)
}

func (t *Transaction) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "mashaling tx")
	}

	return b, nil
}

func (t *Transaction) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, t); err != nil {
		return err
	}

	if t.Version != Version1 {
		return errors.Errorf("unknown transaction version %d", t.Version)
	}

	return nil
}

// Record encodes the transaction as an opaque ledger record
func (t *Transaction) Record() (ledger.Record, error) {
	if t.Version == 0 {
		t.Version = Version1
	}

	b, err := t.Marshal()
	if err != nil {
		return nil, err
	}

	return ledger.Record(b), nil
}

func FromRecord(r ledger.Record) (*Transaction, error) {
	t := &Transaction{}
	if err := t.Unmarshal(r); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}

	return t, nil
}
