package payment

type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendReview  Recommendation = "REVIEW"
	RecommendBlock   Recommendation = "BLOCK"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendApprove, RecommendReview, RecommendBlock:
		return true
	default:
		return false
	}
}

// Status maps a recommendation onto the status a screened transaction takes
func (r Recommendation) Status() Status {
	switch r {
	case RecommendBlock:
		return StatusBlocked
	case RecommendReview:
		return StatusFlagged
	default:
		return StatusValidated
	}
}

// Assessment is the outcome of classifying a transaction
type Assessment struct {
	IsFraudulent      bool           `json:"isFraudulent" yaml:"isFraudulent"`
	RiskScore         float64        `json:"riskScore" yaml:"riskScore"`
	Reason            string         `json:"reason" yaml:"reason"`
	AnomaliesDetected []string       `json:"anomaliesDetected" yaml:"anomaliesDetected"`
	Recommendation    Recommendation `json:"recommendation" yaml:"recommendation"`
	MitigationSteps   []string       `json:"mitigationSteps" yaml:"mitigationSteps"`
}
