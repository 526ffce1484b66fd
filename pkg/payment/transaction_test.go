package payment

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	score := 15.0
	tx := &Transaction{
		ID:                "abc1234",
		Timestamp:         time.Now().UnixMilli(),
		From:              DefaultSender,
		To:                "shop@okaxis",
		Amount:            500,
		Currency:          DefaultCurrency,
		Location:          DefaultLocation,
		Category:          CategoryMerchant,
		DeviceFingerprint: DefaultDevice,
		Status:            StatusValidated,
		RiskScore:         &score,
		MitigationSteps:   []string{"check the VPA"},
	}

	r, err := tx.Record()
	require.NoError(t, err)

	txRB, err := FromRecord(r)
	require.NoError(t, err)

	assert.Equal(t, tx, txRB)
}

func TestFromRecordRejectsUnknownVersion(t *testing.T) {
	tx := &Transaction{Version: 9}
	b, err := tx.Marshal()
	require.NoError(t, err)

	_, err = FromRecord(b)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Transaction{To: "a@upi", Amount: 1, Category: CategoryP2P}
	assert.NoError(t, ok.Validate())

	for _, tx := range []Transaction{
		{To: "a@upi", Amount: 0, Category: CategoryP2P},
		{To: " ", Amount: 1, Category: CategoryP2P},
		{To: "a@upi", Amount: 1, Category: "LOAN"},
	} {
		err := tx.Validate()
		assert.True(t, errors.Is(err, ErrInvalidTransaction), "%+v", tx)
	}
}

func TestApply(t *testing.T) {
	tx := &Transaction{Status: StatusPending}
	tx.Apply(&Assessment{
		RiskScore:       92,
		Reason:          "KYC scam pattern",
		Recommendation:  RecommendBlock,
		MitigationSteps: []string{"do not pay"},
	})

	assert.Equal(t, StatusBlocked, tx.Status)
	require.NotNil(t, tx.RiskScore)
	assert.Equal(t, 92.0, *tx.RiskScore)
	assert.Equal(t, "KYC scam pattern", tx.FraudAnalysis)
	assert.Equal(t, []string{"do not pay"}, tx.MitigationSteps)
}

func TestRecommendationStatus(t *testing.T) {
	assert.Equal(t, StatusValidated, RecommendApprove.Status())
	assert.Equal(t, StatusFlagged, RecommendReview.Status())
	assert.Equal(t, StatusBlocked, RecommendBlock.Status())
	assert.False(t, Recommendation("MAYBE").Valid())
}
