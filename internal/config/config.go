package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/internal/utils/logging"
)

const (
	Cfg_verbose = "verbose"
	Cfg_logJSON = "log.json"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose: false,
		Cfg_logJSON: false,
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("sentinel")
	viper.AddConfigPath("/etc/sentinel/")
	viper.AddConfigPath("$HOME/.sentinel")
	viper.AddConfigPath(".")
	bindEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	if viper.GetBool(Cfg_verbose) {
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}
	logging.SetJSON(viper.GetBool(Cfg_logJSON))

	return Build()
}

// bindEnv maps nested keys onto SENTINEL_ variables, ledger.difficulty
// becoming SENTINEL_LEDGER_DIFFICULTY
func bindEnv() {
	viper.SetEnvPrefix("SENTINEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Build assembles the config from whatever viper currently holds
func Build() (*Config, error) {
	var err error
	c := &Config{}

	c.ledger, err = buildLedgerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "ledger config")
	}

	c.screening, err = buildScreeningConfig()
	if err != nil {
		return nil, errors.Wrap(err, "screening config")
	}

	c.api = buildAPIConfig()
	c.archive = buildArchiveConfig()

	return c, nil
}

type Config struct {
	ledger    *Ledger
	screening *Screening
	api       *API
	archive   *Archive
}

func (c *Config) Ledger() *Ledger {
	return c.ledger
}

func (c *Config) Screening() *Screening {
	return c.screening
}

func (c *Config) API() *API {
	return c.api
}

func (c *Config) Archive() *Archive {
	return c.archive
}
