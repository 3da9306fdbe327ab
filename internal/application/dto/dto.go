package dto

import "time"

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// DecideRequest asks for an underwriting decision on a borrower's loan
// application.
type DecideRequest struct {
	BorrowerID      string  `json:"borrowerId"`
	RequestedAmount float64 `json:"requestedAmount"`
	TermMonths      int     `json:"termMonths"`
	Purpose         string  `json:"purpose,omitempty"`
}

// GetDecisionRequest identifies a decision record to retrieve.
type GetDecisionRequest struct {
	DecisionID string `json:"decisionId"`
}

// ListDecisionsRequest identifies a borrower whose decision history to
// retrieve.
type ListDecisionsRequest struct {
	BorrowerID string `json:"borrowerId"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// FeatureVectorResponse is the external representation of a computed feature
// vector.
type FeatureVectorResponse struct {
	BorrowerID       string             `json:"borrowerId"`
	FeatureSet       string             `json:"featureSet"`
	FeatureVersion   string             `json:"featureVersion"`
	Features         map[string]float64 `json:"features"`
	QualityScore     float64            `json:"qualityScore"`
	Warnings         []string           `json:"warnings,omitempty"`
	SourceEventCount int                `json:"sourceEventCount"`
	ComputedAt       time.Time          `json:"computedAt"`
}

// FactorResponse is one ranked explanation factor.
type FactorResponse struct {
	Name   string  `json:"name"`
	Impact string  `json:"impact"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// ComponentExplanationResponse is one component's contribution to the
// explanation.
type ComponentExplanationResponse struct {
	Component  string           `json:"component"`
	Summary    string           `json:"summary"`
	Confidence float64          `json:"confidence"`
	Factors    []FactorResponse `json:"factors,omitempty"`
}

// ExplanationResponse is the merged, ranked explanation for a decision.
type ExplanationResponse struct {
	Summary    string                         `json:"summary"`
	Confidence float64                        `json:"confidence"`
	Factors    []FactorResponse               `json:"factors"`
	Components []ComponentExplanationResponse `json:"components,omitempty"`
}

// DecisionResponse is the external representation of a finalized decision.
// FraudScore is null when fraud detection produced no score.
type DecisionResponse struct {
	DecisionID     string                 `json:"decisionId"`
	BorrowerID     string                 `json:"borrowerId"`
	Decision       string                 `json:"decision"`
	Reasons        []string               `json:"reasons"`
	CreditScore    float64                `json:"creditScore"`
	FraudScore     *float64               `json:"fraudScore"`
	PolicyVersion  string                 `json:"policyVersion"`
	FeatureSet     string                 `json:"featureSet"`
	FeatureVersion string                 `json:"featureVersion"`
	FailedModels   []string               `json:"failedModels,omitempty"`
	FeatureVector  *FeatureVectorResponse `json:"featureVector,omitempty"`
	Explanation    *ExplanationResponse   `json:"explanation,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}
