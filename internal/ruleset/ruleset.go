// Package ruleset enforces consistency between verdict and reliability
// after the model answer has been interpreted.
package ruleset

import (
	"github.com/ppiankov/factlens/internal/model"
)

// Thresholds applied by Reconcile
const (
	// MinAffirmativeReliability is the lowest score that may carry an affirmative verdict
	MinAffirmativeReliability = 45

	// MinFalseReliability is the floor for a FALSE verdict
	MinFalseReliability = 60
)

// Adjustment records one rule that changed the record
type Adjustment struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// Reconcile applies the ruleset to a draft and returns the final record.
// It is pure and idempotent; the draft passed in is not modified.
func Reconcile(draft model.ResultRecord) model.ResultRecord {
	final, _ := Explain(draft)
	return final
}

// Explain is Reconcile plus the list of rules that fired, in order
func Explain(draft model.ResultRecord) (model.ResultRecord, []Adjustment) {
	r := draft
	var adjustments []Adjustment

	// 1. Low confidence cannot back an affirmative verdict
	if r.AuditReliability < MinAffirmativeReliability && r.Verdict.IsAffirmative() {
		adjustments = append(adjustments, Adjustment{
			Rule:   "demote-affirmative",
			Detail: string(r.Verdict) + " -> " + string(model.VerdictUnverifiable),
		})
		r.Verdict = model.VerdictUnverifiable
	}

	// 2. A FALSE verdict carries at least the floor reliability
	if r.Verdict == model.VerdictFalse && r.AuditReliability < MinFalseReliability {
		adjustments = append(adjustments, Adjustment{
			Rule:   "raise-false-floor",
			Detail: "reliability raised to floor",
		})
		r.AuditReliability = MinFalseReliability
	}

	return r, adjustments
}
