package config

import (
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/pkg/digest"
	"github.com/tcfw/sentinel/pkg/ledger"
)

type Ledger struct {
	Difficulty    int
	MaxIterations uint64
	Digest        string
	QueueSize     int
}

const (
	Cfg_ledger_difficulty    = "ledger.difficulty"
	Cfg_ledger_maxIterations = "ledger.maxIterations"
	Cfg_ledger_digest        = "ledger.digest"
	Cfg_ledger_queueSize     = "ledger.queueSize"
)

var (
	ledgerDefaults = map[string]interface{}{
		Cfg_ledger_difficulty:    2,
		Cfg_ledger_maxIterations: 0,
		Cfg_ledger_digest:        digest.SHA2_256,
		Cfg_ledger_queueSize:     64,
	}
)

func init() {
	for k, v := range ledgerDefaults {
		viper.SetDefault(k, v)
	}
}

// buildLedgerConfig rejects out of range values before any ledger is built
func buildLedgerConfig() (*Ledger, error) {
	c := &Ledger{
		Difficulty:    viper.GetInt(Cfg_ledger_difficulty),
		MaxIterations: viper.GetUint64(Cfg_ledger_maxIterations),
		Digest:        viper.GetString(Cfg_ledger_digest),
		QueueSize:     viper.GetInt(Cfg_ledger_queueSize),
	}

	if err := ledger.ValidateConfig(c.Difficulty, c.MaxIterations); err != nil {
		return nil, err
	}

	if _, err := digest.ByName(c.Digest); err != nil {
		return nil, err
	}

	if c.QueueSize <= 0 {
		c.QueueSize = ledgerDefaults[Cfg_ledger_queueSize].(int)
	}

	return c, nil
}

// Options translates the config into ledger construction options
func (c *Ledger) Options() ([]ledger.Option, error) {
	e, err := digest.ByName(c.Digest)
	if err != nil {
		return nil, err
	}

	return []ledger.Option{
		ledger.WithDifficulty(c.Difficulty),
		ledger.WithMaxIterations(c.MaxIterations),
		ledger.WithDigestEngine(e),
	}, nil
}
