package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/sentinel/pkg/digest"
	"github.com/tcfw/sentinel/pkg/ledger"
)

func withValue(t *testing.T, key string, v interface{}) {
	t.Helper()

	prev := viper.Get(key)
	viper.Set(key, v)
	t.Cleanup(func() { viper.Set(key, prev) })
}

func TestBuildDefaults(t *testing.T) {
	c, err := Build()
	require.NoError(t, err)

	assert.Equal(t, 2, c.Ledger().Difficulty)
	assert.Equal(t, digest.SHA2_256, c.Ledger().Digest)
	assert.Equal(t, 64, c.Ledger().QueueSize)
	assert.Equal(t, ":8080", c.API().Listen)
	assert.False(t, c.Archive().Enabled())
	assert.Equal(t, 80000.0, c.Screening().FallbackThreshold)

	opts, err := c.Ledger().Options()
	require.NoError(t, err)

	l, err := ledger.NewLedger(opts...)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Difficulty())
}

func TestDifficultyRejectedEagerly(t *testing.T) {
	withValue(t, Cfg_ledger_difficulty, 40)

	_, err := Build()
	assert.True(t, errors.Is(err, ledger.ErrConfiguration))
}

func TestUnknownDigestRejected(t *testing.T) {
	withValue(t, Cfg_ledger_digest, "md5")

	_, err := Build()
	assert.True(t, errors.Is(err, digest.ErrDigestUnavailable))
}

func TestScreenerWithoutEndpoint(t *testing.T) {
	c, err := Build()
	require.NoError(t, err)

	assert.NotNil(t, c.Screening().Screener())
}

func TestNestedKeysFromEnv(t *testing.T) {
	t.Setenv("SENTINEL_API_LISTEN", "127.0.0.1:9191")
	t.Setenv("SENTINEL_SCREENING_RETRIES", "5")
	bindEnv()

	c, err := Build()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9191", c.API().Listen)
	assert.Equal(t, 5, c.Screening().Retries)
}
