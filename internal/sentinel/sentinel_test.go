package sentinel

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/sentinel/internal/screening"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

// vpaClassifier blocks any payment to a VPA in its block list
type vpaClassifier struct {
	block map[string]bool
}

func (c *vpaClassifier) Classify(_ context.Context, tx *payment.Transaction) (*payment.Assessment, error) {
	if c.block[tx.To] {
		return &payment.Assessment{
			IsFraudulent:    true,
			RiskScore:       95,
			Reason:          "impersonates a bank KYC desk",
			Recommendation:  payment.RecommendBlock,
			MitigationSteps: []string{"Do not pay"},
		}, nil
	}

	return &payment.Assessment{
		RiskScore:       10,
		Reason:          "known merchant",
		Recommendation:  payment.RecommendApprove,
		MitigationSteps: []string{"Verify the payee name"},
	}, nil
}

func newTestService(t *testing.T, c screening.Classifier) *Service {
	t.Helper()

	l, err := ledger.NewLedger(ledger.WithDifficulty(1))
	require.NoError(t, err)

	s := ledger.NewSealer(l, 16)
	s.Start(context.Background())
	t.Cleanup(s.Stop)

	var n int
	return New(s, screening.NewScreener(c, nil, time.Second), WithIDSource(func() string {
		n++
		return fmt.Sprintf("tx%d", n)
	}))
}

func waitSealed(t *testing.T, d *Decision) *ledger.Block {
	t.Helper()

	select {
	case res := <-d.Sealed:
		require.NoError(t, res.Err)
		return res.Block
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for seal")
	}

	return nil
}

func TestProcessSealsApproved(t *testing.T) {
	s := newTestService(t, &vpaClassifier{})

	d, err := s.Process(context.Background(), &NewTransaction{To: "shop@okaxis", Amount: 500, Category: payment.CategoryMerchant})
	require.NoError(t, err)

	assert.True(t, d.Queued)
	assert.Equal(t, payment.StatusValidated, d.Transaction.Status)
	assert.Equal(t, screening.SourceClassifier, d.Source)
	assert.Equal(t, payment.DefaultCurrency, d.Transaction.Currency)
	assert.Equal(t, payment.DefaultSender, d.Transaction.From)

	b := waitSealed(t, d)
	require.Len(t, b.Records, 1)

	tx, err := payment.FromRecord(b.Records[0])
	require.NoError(t, err)
	assert.Equal(t, "tx1", tx.ID)
	assert.Equal(t, 500.0, tx.Amount)
}

func TestBlockedNeverSealed(t *testing.T) {
	s := newTestService(t, &vpaClassifier{block: map[string]bool{"sbi_support@ybl": true}})

	var last *Decision
	for i, to := range []string{"a@upi", "sbi_support@ybl", "b@upi", "sbi_support@ybl", "c@upi"} {
		d, err := s.Process(context.Background(), &NewTransaction{To: to, Amount: float64(100 + i), Category: payment.CategoryP2P})
		require.NoError(t, err)

		if to == "sbi_support@ybl" {
			assert.False(t, d.Queued)
			assert.Nil(t, d.Sealed)
			assert.Equal(t, payment.StatusBlocked, d.Transaction.Status)
			continue
		}
		last = d
	}

	waitSealed(t, last)

	assert.Equal(t, 4, s.Ledger().Len())
	for _, b := range s.Ledger().Blocks() {
		for _, r := range b.Records {
			tx, err := payment.FromRecord(r)
			require.NoError(t, err)
			assert.NotEqual(t, "sbi_support@ybl", tx.To)
			assert.NotEqual(t, payment.StatusBlocked, tx.Status)
		}
	}

	assert.Len(t, s.Transactions(), 5)
	assert.True(t, s.Ledger().VerifyChain().Valid)
}

func TestProcessFallbackWithoutClassifier(t *testing.T) {
	s := newTestService(t, nil)

	d, err := s.Process(context.Background(), &NewTransaction{To: "x@upi", Amount: 90000, Category: payment.CategoryP2P})
	require.NoError(t, err)

	assert.Equal(t, screening.SourceFallback, d.Source)
	assert.Equal(t, payment.StatusFlagged, d.Transaction.Status)
	assert.True(t, d.Queued)
	waitSealed(t, d)
}

func TestProcessRejectsInvalid(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Process(context.Background(), &NewTransaction{To: "x@upi", Amount: -1})
	assert.True(t, errors.Is(err, payment.ErrInvalidTransaction))
	assert.Empty(t, s.Transactions())
}

func TestStats(t *testing.T) {
	s := newTestService(t, &vpaClassifier{block: map[string]bool{"bad@upi": true}})

	for _, in := range []*NewTransaction{
		{To: "good@upi", Amount: 100},
		{To: "bad@upi", Amount: 300},
	} {
		_, err := s.Process(context.Background(), in)
		require.NoError(t, err)
	}

	st := s.Stats()
	assert.Equal(t, 2, st.TotalTransactions)
	assert.Equal(t, 400.0, st.TotalVolume)
	assert.Equal(t, 1, st.FlaggedCount)
	assert.Equal(t, 1, st.BlockedCount)
	assert.InDelta(t, 52.5, st.AvgRiskScore, 0.001)
}

func TestShortID(t *testing.T) {
	a, b := shortID(), shortID()
	assert.Len(t, a, idLength)
	assert.NotEqual(t, a, b)
}

func TestProcessRecordsWhenSealerStopped(t *testing.T) {
	s := newTestService(t, &vpaClassifier{})
	s.sealer.Stop()

	_, err := s.Process(context.Background(), &NewTransaction{To: "shop@okaxis", Amount: 250})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrSealerStopped))

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, payment.StatusValidated, txs[0].Status)

	st := s.Stats()
	assert.Equal(t, 1, st.TotalTransactions)
	assert.Equal(t, 250.0, st.TotalVolume)
	assert.Equal(t, uint64(0), st.ChainHeight)
}

func TestStatsChainHeightIsLatestHeight(t *testing.T) {
	s := newTestService(t, &vpaClassifier{})
	assert.Equal(t, uint64(0), s.Stats().ChainHeight)

	for _, to := range []string{"a@upi", "b@upi"} {
		d, err := s.Process(context.Background(), &NewTransaction{To: to, Amount: 10})
		require.NoError(t, err)
		waitSealed(t, d)
	}

	assert.Equal(t, 3, s.Ledger().Len())
	assert.Equal(t, uint64(2), s.Stats().ChainHeight)
}

func TestProcessDefaultsMissingRecipient(t *testing.T) {
	s := newTestService(t, &vpaClassifier{})

	d, err := s.Process(context.Background(), &NewTransaction{To: "  ", Amount: 75})
	require.NoError(t, err)

	assert.Equal(t, payment.DefaultRecipient, d.Transaction.To)
	assert.Equal(t, payment.CategoryP2P, d.Transaction.Category)
	assert.True(t, d.Queued)
	waitSealed(t, d)
}
