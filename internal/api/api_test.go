package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/sentinel/internal/metrics"
	"github.com/tcfw/sentinel/internal/screening"
	"github.com/tcfw/sentinel/internal/sentinel"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

type scamClassifier struct{}

func (scamClassifier) Classify(_ context.Context, tx *payment.Transaction) (*payment.Assessment, error) {
	if strings.HasPrefix(tx.To, "scam") {
		return &payment.Assessment{
			RiskScore:       99,
			Reason:          "lottery scam",
			Recommendation:  payment.RecommendBlock,
			MitigationSteps: []string{"Report to CyberCrime.gov.in"},
		}, nil
	}

	return &payment.Assessment{
		RiskScore:       5,
		Reason:          "ok",
		Recommendation:  payment.RecommendApprove,
		MitigationSteps: []string{"Verify the payee"},
	}, nil
}

func newTestAPI(t *testing.T) (*Api, *sentinel.Service, *ledger.Sealer) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New()
	m.Register(reg)

	l, err := ledger.NewLedger(ledger.WithDifficulty(1), ledger.WithObserver(m))
	require.NoError(t, err)

	sealer := ledger.NewSealer(l, 8)
	sealer.Start(context.Background())
	t.Cleanup(sealer.Stop)

	svc := sentinel.New(sealer, screening.NewScreener(scamClassifier{}, nil, time.Second, screening.WithObserver(m)))

	a, err := NewAPI(svc, WithMetrics(reg), WithCORS([]string{"*"}))
	require.NoError(t, err)

	return a, svc, sealer
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	return rec
}

func TestCreateTransactionSeals(t *testing.T) {
	a, svc, _ := newTestAPI(t)

	rec := doRequest(t, a.Handler(), http.MethodPost, "/v1/transactions", &sentinel.NewTransaction{
		To:       "shop@okaxis",
		Amount:   500,
		Category: payment.CategoryMerchant,
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	d := &sentinel.Decision{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(d))
	assert.True(t, d.Queued)
	assert.Equal(t, payment.StatusValidated, d.Transaction.Status)

	assert.Eventually(t, func() bool {
		return svc.Ledger().Len() == 2
	}, 10*time.Second, 5*time.Millisecond)

	rec = doRequest(t, a.Handler(), http.MethodGet, "/v1/chain/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	b := &BlockView{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(b))
	assert.Equal(t, uint64(1), b.Height)
	require.Len(t, b.Transactions, 1)
	assert.Equal(t, d.Transaction.ID, b.Transactions[0].ID)

	rec = doRequest(t, a.Handler(), http.MethodGet, "/v1/chain/verify", nil)
	f := &ledger.Finding{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(f))
	assert.True(t, f.Valid)
	assert.Equal(t, 2, f.Blocks)

	assert.Eventually(t, func() bool {
		rec := doRequest(t, a.Handler(), http.MethodGet, "/metrics", nil)
		return rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), "sentinel_ledger_blocks_sealed_total 1")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBlockedTransactionNotSealed(t *testing.T) {
	a, svc, _ := newTestAPI(t)

	rec := doRequest(t, a.Handler(), http.MethodPost, "/v1/transactions", &sentinel.NewTransaction{
		To:     "scam_lottery@upi",
		Amount: 25000,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	d := &sentinel.Decision{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(d))
	assert.False(t, d.Queued)
	assert.Equal(t, payment.StatusBlocked, d.Transaction.Status)

	assert.Equal(t, 1, svc.Ledger().Len())

	rec = doRequest(t, a.Handler(), http.MethodGet, "/v1/stats", nil)
	st := &sentinel.Stats{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(st))
	assert.Equal(t, 1, st.BlockedCount)
	assert.Equal(t, uint64(0), st.ChainHeight)
}

func TestErrorStatuses(t *testing.T) {
	a, _, sealer := newTestAPI(t)

	rec := doRequest(t, a.Handler(), http.MethodGet, "/v1/chain/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, a.Handler(), http.MethodGet, "/v1/chain/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, a.Handler(), http.MethodPost, "/v1/transactions", &sentinel.NewTransaction{To: "x@upi", Amount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sealer.Stop()
	rec = doRequest(t, a.Handler(), http.MethodPost, "/v1/transactions", &sentinel.NewTransaction{To: "x@upi", Amount: 10})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClient(t *testing.T) {
	a, svc, _ := newTestAPI(t)

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	d, err := c.Process(ctx, &sentinel.NewTransaction{To: "friend@upi", Amount: 42})
	require.NoError(t, err)
	assert.True(t, d.Queued)

	assert.Eventually(t, func() bool {
		return svc.Ledger().Len() == 2
	}, 10*time.Second, 5*time.Millisecond)

	txs, err := c.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	bs, err := c.Chain(ctx)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, bs[0].Digest, bs[1].PreviousDigest)

	b, err := c.Block(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, bs[1].Digest, b.Digest)

	f, err := c.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, f.Valid)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42.0, st.TotalVolume)

	_, err = c.Block(ctx, 7)
	assert.Error(t, err)
}

func TestBlockViewCountsUndecodedRecords(t *testing.T) {
	tx := &payment.Transaction{ID: "tx1", To: "shop@okaxis", Amount: 10, Category: payment.CategoryP2P}
	r, err := tx.Record()
	require.NoError(t, err)

	v := NewBlockView(&ledger.Block{Height: 4, Records: []ledger.Record{r, {0xc1}}})

	require.Len(t, v.Transactions, 1)
	assert.Equal(t, "tx1", v.Transactions[0].ID)
	assert.Equal(t, 1, v.Undecoded)
	assert.Len(t, v.Records, 2)
}
