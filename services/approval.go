package services

import (
	"fmt"
	"time"

	"vehicle-rental-server/models"

	"github.com/shopspring/decimal"
)

// ApprovalThreshold is the score at or above which a request is approved
// without the host.
const ApprovalThreshold = 80

// ScoreInput is everything the approval rules look at. A nil Policy means the
// host never configured auto-approval.
type ScoreInput struct {
	Policy *models.HostPolicy
	Trust  models.RenterTrust
	Start  time.Time
	Amount decimal.Decimal
	Now    time.Time
}

// RuleOutcome records how one rule affected the score.
type RuleOutcome struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Delta  int    `json:"delta"`
	Note   string `json:"note,omitempty"`
}

// ScoreResult is the approval decision for one request.
type ScoreResult struct {
	Eligible bool          `json:"eligible"`
	Score    int           `json:"score"`
	StopRule string        `json:"stopRule,omitempty"`
	Details  []RuleOutcome `json:"details"`
}

// A rule either stops evaluation with a fixed score or adds delta to the
// running score.
type approvalRule struct {
	name string
	eval func(in ScoreInput) (stop bool, value int, note string)
}

// approvalRules are evaluated in order. The first four gate, the last three
// adjust.
var approvalRules = []approvalRule{
	{name: "policy_enabled", eval: func(in ScoreInput) (bool, int, string) {
		if in.Policy == nil || !in.Policy.AutoApproveEnabled {
			return true, 0, "auto-approval disabled"
		}
		return false, 0, ""
	}},
	{name: "advance_notice", eval: func(in ScoreInput) (bool, int, string) {
		hours := in.Start.Sub(in.Now).Hours()
		if hours < float64(in.Policy.MinAdvanceHours) {
			return true, 10, fmt.Sprintf("%.1fh notice, host requires %dh", hours, in.Policy.MinAdvanceHours)
		}
		return false, 20, ""
	}},
	{name: "amount_limit", eval: func(in ScoreInput) (bool, int, string) {
		if in.Amount.GreaterThan(in.Policy.MaxAutoApproveAmount) {
			return true, 20, fmt.Sprintf("amount %s above limit %s", in.Amount.StringFixed(2), in.Policy.MaxAutoApproveAmount.StringFixed(2))
		}
		return false, 25, ""
	}},
	{name: "verification", eval: func(in ScoreInput) (bool, int, string) {
		if in.Policy.RequireVerification && in.Trust.VerificationScore < in.Policy.MinRenterTrustScore {
			return true, 30, fmt.Sprintf("verification score %d below %d", in.Trust.VerificationScore, in.Policy.MinRenterTrustScore)
		}
		return false, 20, ""
	}},
	{name: "booking_history", eval: func(in ScoreInput) (bool, int, string) {
		return false, min(15, in.Trust.BookingHistoryScore/5), ""
	}},
	{name: "cancellation_rate", eval: func(in ScoreInput) (bool, int, string) {
		return false, -min(10, in.Trust.CancellationRate/2), ""
	}},
	{name: "disputes", eval: func(in ScoreInput) (bool, int, string) {
		return false, -min(10, in.Trust.DisputeCount*5), ""
	}},
}

// Score runs the approval rules. It is pure: the same input always yields the
// same result.
func Score(in ScoreInput) ScoreResult {
	res := ScoreResult{Details: make([]RuleOutcome, 0, len(approvalRules))}
	for _, rule := range approvalRules {
		stop, value, note := rule.eval(in)
		if stop {
			res.Score = value
			res.StopRule = rule.name
			res.Details = append(res.Details, RuleOutcome{Rule: rule.name, Note: note})
			return res
		}
		res.Score += value
		res.Details = append(res.Details, RuleOutcome{Rule: rule.name, Passed: true, Delta: value, Note: note})
	}
	res.Eligible = res.Score >= ApprovalThreshold
	return res
}
