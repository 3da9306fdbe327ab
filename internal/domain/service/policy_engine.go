package service

import (
	"fmt"

	"github.com/altlend/decisioning/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Policy engine – deterministic decision state machine
// ---------------------------------------------------------------------------

// PolicyConfig holds the business thresholds of the decision policy. The
// numbers are a product decision, so they are configuration with documented
// defaults rather than derived values.
type PolicyConfig struct {
	Version string
	// ApproveCreditThreshold is the minimum credit score for approval.
	ApproveCreditThreshold float64
	// ApproveFraudCeiling is the fraud score at or above which approval is
	// off the table.
	ApproveFraudCeiling float64
	// RejectFraudThreshold is the fraud score at or above which the
	// application is rejected outright.
	RejectFraudThreshold float64
	// RejectCreditFloor is the credit score below which the application is
	// rejected outright.
	RejectCreditFloor float64
}

// DefaultPolicyConfig returns the documented default thresholds.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Version:                "policy-v1",
		ApproveCreditThreshold: 70,
		ApproveFraudCeiling:    0.60,
		RejectFraudThreshold:   0.80,
		RejectCreditFloor:      40,
	}
}

// Guard reasons. Any missing or ambiguous input resolves to REVIEW with one
// of these, never to a default approval.
const (
	ReasonMissingCreditResult = "missing credit scoring result"
	ReasonMissingFraudResult  = "missing fraud detection result"
	ReasonFraudUnavailable    = "fraud detection unavailable — requires manual review"
	ReasonNoApprovalRuleMatch = "approval logic produced no rule match"
)

// DecisionResult is the deterministic output of the policy engine. Feeding
// the same ensemble and fraud results through the engine twice yields
// identical values; nothing here depends on time, randomness, or map order.
type DecisionResult struct {
	Decision      valueobject.Decision
	Reasons       []string
	CreditScore   float64
	FraudScore    valueobject.FraudScore
	PolicyVersion string
}

// PolicyEngine evaluates guards and then ordered policy rules over the
// ensemble and fraud outputs. Every terminal path attaches at least one
// reason, and APPROVE is reachable only through an explicit matched rule.
type PolicyEngine struct {
	cfg PolicyConfig
}

// NewPolicyEngine creates an engine with the given thresholds.
func NewPolicyEngine(cfg PolicyConfig) *PolicyEngine {
	if cfg.Version == "" {
		cfg.Version = DefaultPolicyConfig().Version
	}
	return &PolicyEngine{cfg: cfg}
}

// Decide applies the safety guards and then the ordered rules.
func (p *PolicyEngine) Decide(ensemble *EnsembleResult, fraud *FraudResult) DecisionResult {
	// Guard 1: a credit decision with no scoring basis cannot proceed.
	if ensemble == nil || len(ensemble.Results) == 0 {
		return p.review(0, valueobject.AbsentFraudScore(), ReasonMissingCreditResult)
	}

	credit := ensemble.CreditScore

	// Guard 2: a structurally missing fraud result is unknown fraud status.
	if fraud == nil {
		return p.review(credit, valueobject.AbsentFraudScore(), ReasonMissingFraudResult)
	}

	// Guard 3: an absent fraud score means "unknown", never "clean", no
	// matter how strong the credit score is.
	if fraud.Score.Absent() {
		return p.review(credit, fraud.Score, ReasonFraudUnavailable)
	}

	fraudScore := fraud.Score.Value()

	// Rule 1: confident fraud signal rejects outright.
	if fraudScore >= p.cfg.RejectFraudThreshold {
		reasons := []string{fmt.Sprintf(
			"fraud score %.2f exceeds reject threshold %.2f",
			fraudScore, p.cfg.RejectFraudThreshold,
		)}
		for _, flag := range fraud.Flags {
			reasons = append(reasons, "fraud flag: "+flag)
		}
		return DecisionResult{
			Decision:      valueobject.DecisionReject,
			Reasons:       reasons,
			CreditScore:   credit,
			FraudScore:    fraud.Score,
			PolicyVersion: p.cfg.Version,
		}
	}

	// Rule 2: credit below the floor rejects outright.
	if credit < p.cfg.RejectCreditFloor {
		return DecisionResult{
			Decision: valueobject.DecisionReject,
			Reasons: []string{fmt.Sprintf(
				"credit score %.1f below minimum threshold %.1f",
				credit, p.cfg.RejectCreditFloor,
			)},
			CreditScore:   credit,
			FraudScore:    fraud.Score,
			PolicyVersion: p.cfg.Version,
		}
	}

	// Rule 3: approval requires every approval rule to match and the matched
	// rules to be in hand. An approval with no recorded rule match is a code
	// path that forgot its justification and downgrades itself to review.
	if credit >= p.cfg.ApproveCreditThreshold && fraudScore < p.cfg.ApproveFraudCeiling {
		matched := p.matchedApprovalRules(credit, fraudScore)
		if len(matched) == 0 {
			return p.review(credit, fraud.Score, ReasonNoApprovalRuleMatch)
		}
		return DecisionResult{
			Decision:      valueobject.DecisionApprove,
			Reasons:       matched,
			CreditScore:   credit,
			FraudScore:    fraud.Score,
			PolicyVersion: p.cfg.Version,
		}
	}

	// Default: neither confident enough to approve nor damning enough to
	// reject goes to a human.
	return p.review(credit, fraud.Score, fmt.Sprintf(
		"credit score %.1f with fraud score %.2f falls outside automatic thresholds",
		credit, fraudScore,
	))
}

// matchedApprovalRules returns one reason per approval rule the inputs
// satisfy. Approval is only issued when this list is non-empty, so an
// approval can never leave the engine without its justification attached.
func (p *PolicyEngine) matchedApprovalRules(credit, fraudScore float64) []string {
	var matched []string
	if credit >= p.cfg.ApproveCreditThreshold {
		matched = append(matched, fmt.Sprintf(
			"credit score %.1f meets approval threshold %.1f",
			credit, p.cfg.ApproveCreditThreshold,
		))
	}
	if fraudScore < p.cfg.ApproveFraudCeiling {
		matched = append(matched, fmt.Sprintf(
			"fraud score %.2f below approval ceiling %.2f",
			fraudScore, p.cfg.ApproveFraudCeiling,
		))
	}
	return matched
}

func (p *PolicyEngine) review(credit float64, fraud valueobject.FraudScore, reason string) DecisionResult {
	return DecisionResult{
		Decision:      valueobject.DecisionReview,
		Reasons:       []string{reason},
		CreditScore:   credit,
		FraudScore:    fraud,
		PolicyVersion: p.cfg.Version,
	}
}
