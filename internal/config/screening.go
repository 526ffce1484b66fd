package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/internal/screening"
)

type Screening struct {
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	Retries           int
	FallbackThreshold float64
}

const (
	Cfg_screening_endpoint          = "screening.endpoint"
	Cfg_screening_apiKey            = "screening.apiKey"
	Cfg_screening_timeout           = "screening.timeout"
	Cfg_screening_retries           = "screening.retries"
	Cfg_screening_fallbackThreshold = "screening.fallbackThreshold"
)

var (
	screeningDefaults = map[string]interface{}{
		Cfg_screening_endpoint:          "",
		Cfg_screening_apiKey:            "",
		Cfg_screening_timeout:           10 * time.Second,
		Cfg_screening_retries:           2,
		Cfg_screening_fallbackThreshold: float64(screening.DefaultThreshold),
	}
)

func init() {
	for k, v := range screeningDefaults {
		viper.SetDefault(k, v)
	}
}

func buildScreeningConfig() (*Screening, error) {
	c := &Screening{
		Endpoint:          viper.GetString(Cfg_screening_endpoint),
		APIKey:            viper.GetString(Cfg_screening_apiKey),
		Timeout:           viper.GetDuration(Cfg_screening_timeout),
		Retries:           viper.GetInt(Cfg_screening_retries),
		FallbackThreshold: viper.GetFloat64(Cfg_screening_fallbackThreshold),
	}

	if c.Timeout <= 0 {
		return nil, errors.Errorf("screening timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return nil, errors.Errorf("screening retries must not be negative, got %d", c.Retries)
	}

	return c, nil
}

// Screener builds the screener; without an endpoint only the fallback answers
func (c *Screening) Screener(opts ...screening.ScreenerOption) *screening.Screener {
	var cl screening.Classifier
	if c.Endpoint != "" {
		cl = screening.NewHTTPClassifier(c.Endpoint,
			screening.WithAPIKey(c.APIKey),
			screening.WithRetries(c.Retries, 200*time.Millisecond, 2*time.Second),
		)
	}

	return screening.NewScreener(cl, screening.NewFallbackPolicy(c.FallbackThreshold), c.Timeout, opts...)
}
