package screening

import "github.com/tcfw/sentinel/pkg/payment"

const (
	DefaultThreshold = 80000

	fallbackHighScore = 65
	fallbackLowScore  = 15

	fallbackReason = "Automated baseline check: Transaction exceeds standard user threshold for this account."
)

var fallbackSteps = []string{
	"Verify the recipient's legal name on the UPI app before entering PIN.",
	"Never enter your UPI PIN to receive money.",
	"Check if the recipient VPA has been reported on CyberCrime.gov.in",
}

// FallbackPolicy scores a transaction on its amount alone. It never blocks.
type FallbackPolicy struct {
	Threshold float64
}

func NewFallbackPolicy(threshold float64) *FallbackPolicy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &FallbackPolicy{Threshold: threshold}
}

func (p *FallbackPolicy) Assess(tx *payment.Transaction) *payment.Assessment {
	a := &payment.Assessment{
		RiskScore:         fallbackLowScore,
		Reason:            fallbackReason,
		AnomaliesDetected: []string{},
		Recommendation:    payment.RecommendApprove,
		MitigationSteps:   append([]string(nil), fallbackSteps...),
	}

	if tx.Amount > p.Threshold {
		a.IsFraudulent = true
		a.RiskScore = fallbackHighScore
		a.AnomaliesDetected = []string{"Abnormal Volume"}
		a.Recommendation = payment.RecommendReview
	}

	return a
}
