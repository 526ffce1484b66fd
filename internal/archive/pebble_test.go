package archive

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/sentinel/pkg/ledger"
)

func TestArchiveSealedBlocks(t *testing.T) {
	a, err := Open("archive", WithMemFS())
	require.NoError(t, err)
	defer a.Close()

	l, err := ledger.NewLedger(ledger.WithDifficulty(1), ledger.WithArchive(a))
	require.NoError(t, err)

	sealed := []*ledger.Block{}
	for i := 0; i < 300; i++ {
		b, err := l.Seal(context.Background(), []ledger.Record{ledger.Record{byte(i), byte(i >> 8)}})
		require.NoError(t, err)
		sealed = append(sealed, b)
	}

	all, err := a.All()
	require.NoError(t, err)
	require.Len(t, all, len(sealed)+1)
	assert.True(t, all[0].IsGenesis())

	for i, b := range all[1:] {
		assert.Equal(t, sealed[i].Height, b.Height)
		assert.Equal(t, sealed[i].Digest, b.Digest)
		assert.Equal(t, sealed[i].Records, b.Records)
	}

	assert.True(t, l.VerifyBlocks(all).Valid)

	b, err := a.Get(2)
	require.NoError(t, err)
	assert.Equal(t, sealed[1].Digest, b.Digest)
	assert.True(t, l.Verify(b, sealed[0].Digest))

	_, err = a.Get(1000)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestArchiveHoldsOnlyLatestRun(t *testing.T) {
	fs := vfs.NewMem()

	a, err := Open("archive", WithFS(fs))
	require.NoError(t, err)

	l, err := ledger.NewLedger(ledger.WithDifficulty(1), ledger.WithArchive(a))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := l.Seal(context.Background(), []ledger.Record{ledger.Record{byte(i)}})
		require.NoError(t, err)
	}
	require.NoError(t, a.Close())

	a, err = Open("archive", WithFS(fs))
	require.NoError(t, err)
	defer a.Close()

	all, err := a.All()
	require.NoError(t, err)
	require.Len(t, all, 4)

	l, err = ledger.NewLedger(ledger.WithDifficulty(1), ledger.WithArchive(a))
	require.NoError(t, err)
	b, err := l.Seal(context.Background(), []ledger.Record{ledger.Record("restart")})
	require.NoError(t, err)

	all, err = a.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, l.GetLatest().Digest, b.Digest)
	assert.Equal(t, b.Digest, all[1].Digest)

	f := l.VerifyBlocks(all)
	assert.True(t, f.Valid, f.Reason)
}
